package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"celldump"
	"celldump/internal/contenthash"
	"celldump/internal/fpcache"
	"celldump/internal/logging"
	"celldump/internal/services"
)

// ParseFile fingerprints a plugin, consults the cache, and otherwise parses
// and caches it. Cache failures are logged and never fail the parse.
func ParseFile(ctx context.Context, req ParseFileRequest) (ParseFileResult, error) {
	path := strings.TrimSpace(req.Path)
	data := req.Data
	if data == nil {
		if path == "" {
			return ParseFileResult{}, services.Wrap(services.ErrValidation, "api", "parse", "plugin path required", nil)
		}
		var err error
		data, err = readPlugin(path)
		if err != nil {
			return ParseFileResult{}, err
		}
	}

	fingerprint := contenthash.String(data)
	ctx = services.WithPluginPath(ctx, path)
	ctx = services.WithFingerprint(ctx, fingerprint)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(req.Logger, "parse"))

	result := ParseFileResult{
		Path:        path,
		Fingerprint: fingerprint,
		SizeBytes:   int64(len(data)),
	}

	if req.Cache != nil {
		_, cached, ok, err := req.Cache.Lookup(ctx, fingerprint)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "cache lookup failed", "fpcache_lookup_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "plugin parsed without cache"),
			)
		case ok:
			logger.Debug("cache hit")
			result.Plugin = cached
			result.FromCache = true
			return result, nil
		}
	}

	projected, err := celldump.ParsePlugin(ctx, req.Parser, data)
	if err != nil {
		return ParseFileResult{}, fmt.Errorf("%s: %w", displayPath(path), err)
	}
	result.Plugin = projected
	logger.Info("plugin parsed",
		logging.Int("worlds", len(projected.Worlds)),
		logging.Int("cells", len(projected.Cells)),
		logging.Int("masters", len(projected.Header.Masters)),
	)

	if req.Cache != nil {
		entry := fpcache.Entry{Fingerprint: fingerprint, SourcePath: path, SizeBytes: result.SizeBytes}
		if _, err := req.Cache.Store(ctx, entry, projected); err != nil {
			logging.WarnWithContext(logger, "cache store failed", "fpcache_store_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "plugin will be parsed again next time"),
			)
		}
	}
	return result, nil
}

// HashFiles fingerprints each file without loading it fully into memory.
func HashFiles(paths []string) ([]HashResult, error) {
	results := make([]HashResult, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return results, classifyFileError(path, err)
		}
		if info.IsDir() {
			return results, services.Wrap(services.ErrValidation, "api", "hash", path+" is a directory", nil)
		}
		sum, err := contenthash.SumFile(path)
		if err != nil {
			return results, err
		}
		results = append(results, HashResult{
			Path:        path,
			Fingerprint: contenthash.Format(sum),
			Sum:         sum,
			SizeBytes:   info.Size(),
		})
	}
	return results, nil
}

func readPlugin(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, classifyFileError(path, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "api", "read", path+" is a directory", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classifyFileError(path, err)
	}
	return data, nil
}

func classifyFileError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrNotFound, "api", "read", path, err)
	}
	return fmt.Errorf("read %s: %w", path, err)
}

func displayPath(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return path
}
