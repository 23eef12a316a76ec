// Package dumptool runs the skyrim-cell-dump executable as a plugin parser.
//
// Key types:
//   - Client: implements nativeplugin.Parser by shelling out to the tool
//   - Executor: command runner seam, replaced in tests
//
// Parse writes the plugin bytes to a temporary .esp file, invokes
// "<binary> <file> --format json" under the configured timeout and decodes
// the JSON graph. Failures are tagged with the services markers:
// ErrExternalTool for a non-zero exit (stderr included), ErrTimeout when the
// deadline kills the tool, and ErrValidation when the output cannot be
// decoded.
package dumptool
