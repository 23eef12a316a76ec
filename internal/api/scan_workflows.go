package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"celldump/internal/logging"
	"celldump/internal/services"
)

// ErrScanInProgress is returned when another process holds the scan lock.
var ErrScanInProgress = errors.New("another scan is in progress")

var pluginExtensions = []string{".esp", ".esm", ".esl"}

// IsPluginFile reports whether name has a plugin extension, ignoring case.
func IsPluginFile(name string) bool {
	return slices.Contains(pluginExtensions, strings.ToLower(filepath.Ext(name)))
}

// ScanDirectory parses every plugin below req.Dir in lexical path order.
// Per-file failures are collected in the summary; only setup failures,
// lock contention and cancellation return an error.
func ScanDirectory(ctx context.Context, req ScanRequest) (ScanSummary, error) {
	dir := strings.TrimSpace(req.Dir)
	if dir == "" {
		return ScanSummary{}, services.Wrap(services.ErrValidation, "api", "scan", "directory required", nil)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return ScanSummary{}, classifyFileError(dir, err)
	}
	if !info.IsDir() {
		return ScanSummary{}, services.Wrap(services.ErrValidation, "api", "scan", dir+" is not a directory", nil)
	}

	if lockPath := strings.TrimSpace(req.LockPath); lockPath != "" {
		if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
			return ScanSummary{}, fmt.Errorf("ensure lock directory: %w", err)
		}
		lock := flock.New(lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return ScanSummary{}, fmt.Errorf("acquire scan lock: %w", err)
		}
		if !ok {
			return ScanSummary{}, fmt.Errorf("%w (lock %s)", ErrScanInProgress, lockPath)
		}
		defer func() { _ = lock.Unlock() }()
	}

	paths, err := collectPlugins(dir)
	if err != nil {
		return ScanSummary{}, err
	}

	logger := logging.NewComponentLogger(req.Logger, "scan")
	started := time.Now()
	summary := ScanSummary{
		Dir:      dir,
		Total:    len(paths),
		Items:    make([]ScanItem, 0, len(paths)),
		Failures: []ScanFailure{},
	}
	logger.Info("scan started", logging.String("dir", dir), logging.Int("plugins", len(paths)))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(started)
			logging.ErrorWithContext(logger, "scan aborted", "scan_aborted",
				logging.Error(err),
				logging.Int("remaining", len(paths)-len(summary.Items)-len(summary.Failures)),
				logging.String(logging.FieldImpact, "remaining plugins not cached"),
			)
			return summary, err
		}
		result, err := ParseFile(ctx, ParseFileRequest{
			Path:   path,
			Parser: req.Parser,
			Cache:  req.Cache,
			Logger: req.Logger,
		})
		if err != nil {
			logging.WarnWithContext(logger, "plugin skipped", "scan_plugin_failed",
				logging.String(logging.FieldPluginPath, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run celldump parse on the file for details"),
				logging.String(logging.FieldImpact, "plugin not cached"),
			)
			summary.Failures = append(summary.Failures, ScanFailure{Path: path, Error: err.Error()})
			continue
		}
		logger.Debug("plugin scanned",
			logging.String(logging.FieldPluginPath, path),
			logging.String(logging.FieldFingerprint, result.Fingerprint),
			logging.Bool("from_cache", result.FromCache),
		)
		if result.FromCache {
			summary.Cached++
		} else {
			summary.Parsed++
		}
		summary.Items = append(summary.Items, ScanItem{
			Path:        path,
			Fingerprint: result.Fingerprint,
			FromCache:   result.FromCache,
			Worlds:      len(result.Plugin.Worlds),
			Cells:       len(result.Plugin.Cells),
		})
	}

	summary.Elapsed = time.Since(started)
	logger.Info("scan finished",
		logging.Int("parsed", summary.Parsed),
		logging.Int("cached", summary.Cached),
		logging.Int("failed", len(summary.Failures)),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func collectPlugins(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && IsPluginFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}
