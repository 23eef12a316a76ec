package api

import (
	"errors"
	"log/slog"
	"strings"

	"celldump/internal/config"
	"celldump/internal/dumptool"
	"celldump/internal/fpcache"
	"celldump/internal/logging"
	"celldump/internal/services"
)

var (
	ErrCacheDisabled      = errors.New("fingerprint cache is disabled")
	ErrCacheNotConfigured = errors.New("fingerprint cache path is not configured")
)

// OpenCache validates config and opens the fingerprint cache.
func OpenCache(cfg *config.Config, logger *slog.Logger) (*fpcache.Cache, error) {
	if cfg == nil || !cfg.Cache.Enabled {
		return nil, ErrCacheDisabled
	}
	if strings.TrimSpace(cfg.Cache.Path) == "" {
		return nil, ErrCacheNotConfigured
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return fpcache.Open(cfg.Cache.Path, logger)
}

// NewParser builds the dump tool parser from config.
func NewParser(cfg *config.Config, logger *slog.Logger) (*dumptool.Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "parser", "configuration required", nil)
	}
	return dumptool.New(cfg.Parser.Binary, cfg.Parser.TimeoutSeconds, dumptool.WithLogger(logger))
}
