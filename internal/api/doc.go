// Package api holds the workflows behind the celldump CLI commands. It wires
// configuration, the dump tool parser and the fingerprint cache together so
// command handlers stay thin.
//
// # Workflows
//
// ParseFile: fingerprint a plugin file, serve it from the cache when
// possible, otherwise parse, project and cache it.
//
// HashFiles: streaming SeaHash fingerprints of files on disk.
//
// ScanDirectory: run ParseFile over every plugin below a directory in lexical
// order, collecting per-file failures. A lock file keeps concurrent scans
// from racing on the cache.
//
// # Resources
//
// OpenCache and NewParser build the cache and parser from configuration.
package api
