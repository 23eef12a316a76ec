package api

import (
	"log/slog"
	"time"

	"celldump/internal/fpcache"
	"celldump/internal/nativeplugin"
	"celldump/internal/plugin"
)

// ParseFileRequest describes a single plugin to parse.
type ParseFileRequest struct {
	Path string
	// Data, when non-nil, is used instead of reading Path.
	Data   []byte
	Parser nativeplugin.Parser
	// Cache is optional; nil disables lookups and stores.
	Cache  *fpcache.Cache
	Logger *slog.Logger
}

// ParseFileResult is the outcome of ParseFile.
type ParseFileResult struct {
	Path        string         `json:"path" yaml:"path" cbor:"path"`
	Fingerprint string         `json:"fingerprint" yaml:"fingerprint" cbor:"fingerprint"`
	SizeBytes   int64          `json:"size_bytes" yaml:"size_bytes" cbor:"size_bytes"`
	FromCache   bool           `json:"from_cache" yaml:"from_cache" cbor:"from_cache"`
	Plugin      *plugin.Plugin `json:"plugin" yaml:"plugin" cbor:"plugin"`
}

// HashResult is the fingerprint of one file.
type HashResult struct {
	Path        string `json:"path" yaml:"path" cbor:"path"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint" cbor:"fingerprint"`
	Sum         uint64 `json:"sum" yaml:"sum" cbor:"sum"`
	SizeBytes   int64  `json:"size_bytes" yaml:"size_bytes" cbor:"size_bytes"`
}

// ScanRequest describes a directory scan.
type ScanRequest struct {
	Dir    string
	Parser nativeplugin.Parser
	Cache  *fpcache.Cache
	// LockPath guards against concurrent scans; empty disables locking.
	LockPath string
	Logger   *slog.Logger
}

// ScanItem summarizes one successfully processed plugin.
type ScanItem struct {
	Path        string `json:"path" yaml:"path" cbor:"path"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint" cbor:"fingerprint"`
	FromCache   bool   `json:"from_cache" yaml:"from_cache" cbor:"from_cache"`
	Worlds      int    `json:"worlds" yaml:"worlds" cbor:"worlds"`
	Cells       int    `json:"cells" yaml:"cells" cbor:"cells"`
}

// ScanFailure records a plugin that could not be processed.
type ScanFailure struct {
	Path  string `json:"path" yaml:"path" cbor:"path"`
	Error string `json:"error" yaml:"error" cbor:"error"`
}

// ScanSummary is the outcome of ScanDirectory.
type ScanSummary struct {
	Dir      string        `json:"dir" yaml:"dir" cbor:"dir"`
	Total    int           `json:"total" yaml:"total" cbor:"total"`
	Parsed   int           `json:"parsed" yaml:"parsed" cbor:"parsed"`
	Cached   int           `json:"cached" yaml:"cached" cbor:"cached"`
	Items    []ScanItem    `json:"items" yaml:"items" cbor:"items"`
	Failures []ScanFailure `json:"failures" yaml:"failures" cbor:"failures"`
	Elapsed  time.Duration `json:"elapsed_ns" yaml:"elapsed" cbor:"elapsed_ns"`
}
