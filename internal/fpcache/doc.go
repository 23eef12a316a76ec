// Package fpcache persists projected plugins keyed by content fingerprint.
//
// The cache is a SQLite database (modernc.org/sqlite). Each row stores the
// base-36 SeaHash fingerprint of the plugin file, summary counts, and the
// projected plugin as zstd-compressed deterministic CBOR. A BLAKE3-256 digest
// of the payload is verified on every read; rows that fail verification or
// decoding are dropped and reported as misses.
//
// The schema is versioned through a schema_version table. Opening a database
// written with another version fails with ErrSchemaMismatch; clearing the
// cache file is the migration path.
package fpcache
