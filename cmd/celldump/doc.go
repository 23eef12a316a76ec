// Package main hosts the celldump CLI entrypoint and command graph.
//
// The Cobra-based command tree fingerprints plugin files, parses them through
// the configured skyrim-cell-dump binary, maintains the fingerprint cache and
// scaffolds configuration. It centralizes configuration resolution, logger
// setup and output encoding so subcommands can focus on their workflow.
//
// Keep this package lean: add new functionality by extending the internal
// packages first (internal/api for workflows), then surface it here.
package main
