// Package services defines shared utilities consumed by the parse workflows
// and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers, plugin paths and
//     fingerprints for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     so the CLI can pick an exit code and hint.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform.
package services
