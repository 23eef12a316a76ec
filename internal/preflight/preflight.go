package preflight

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"celldump/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name" yaml:"name" cbor:"name"`
	Passed bool   `json:"passed" yaml:"passed" cbor:"passed"`
	Detail string `json:"detail" yaml:"detail" cbor:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	timeout := time.Duration(cfg.Parser.TimeoutSeconds) * time.Second
	results := []Result{CheckParser(ctx, cfg.Parser.Binary, timeout)}

	if cfg.Cache.Enabled {
		results = append(results,
			CheckDirectoryAccess("Cache directory", filepath.Dir(cfg.Cache.Path)),
			CheckCacheDatabase(ctx, cfg.Cache.Path),
		)
	}

	if strings.TrimSpace(cfg.Logging.Dir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}

	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
