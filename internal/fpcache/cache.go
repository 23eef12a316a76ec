package fpcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"celldump/internal/contenthash"
	"celldump/internal/logging"
	"celldump/internal/plugin"
	"celldump/internal/radix"
	"celldump/internal/services"
)

const component = "fpcache"

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry describes a cached plugin without its payload.
type Entry struct {
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint" cbor:"fingerprint"`
	Algorithm   string    `json:"algorithm" yaml:"algorithm" cbor:"algorithm"`
	SourcePath  string    `json:"source_path,omitempty" yaml:"source_path,omitempty" cbor:"source_path,omitempty"`
	SizeBytes   int64     `json:"size_bytes" yaml:"size_bytes" cbor:"size_bytes"`
	WorldCount  int       `json:"world_count" yaml:"world_count" cbor:"world_count"`
	CellCount   int       `json:"cell_count" yaml:"cell_count" cbor:"cell_count"`
	MasterCount int       `json:"master_count" yaml:"master_count" cbor:"master_count"`
	CachedAt    time.Time `json:"cached_at" yaml:"cached_at" cbor:"cached_at"`
	LastHitAt   time.Time `json:"last_hit_at,omitzero" yaml:"last_hit_at,omitempty" cbor:"last_hit_at,omitempty"`
}

// Cache is a SQLite-backed fingerprint cache. It is safe for concurrent use.
type Cache struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Open initializes or connects to the cache database at path.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "open", "cache path required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	cache := &Cache{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, component),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

const entryColumns = `fingerprint, algorithm, source_path, size_bytes, world_count, cell_count, master_count, cached_at, last_hit_at`

// Lookup returns the cached plugin for fingerprint and records the hit.
// A row whose payload fails verification is deleted and reported as a miss.
func (c *Cache) Lookup(ctx context.Context, fingerprint string) (Entry, *plugin.Plugin, bool, error) {
	fp, err := NormalizeFingerprint(fingerprint)
	if err != nil {
		return Entry{}, nil, false, err
	}

	row := c.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+`, payload, payload_digest FROM fingerprints WHERE fingerprint = ? AND algorithm = ?`,
		fp, contenthash.Algorithm,
	)
	var payload, digest []byte
	entry, err := scanEntry(row, &payload, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, nil, false, nil
	}
	if err != nil {
		return Entry{}, nil, false, fmt.Errorf("lookup fingerprint: %w", err)
	}

	decoded, err := decodePayload(payload, digest)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "dropping corrupt cache entry", "fpcache_corrupt",
			logging.String(logging.FieldFingerprint, fp),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the plugin will be parsed again"),
			logging.String(logging.FieldImpact, "cache miss"),
		)
		if _, delErr := c.db.ExecContext(ctx, `DELETE FROM fingerprints WHERE fingerprint = ?`, fp); delErr != nil {
			return Entry{}, nil, false, fmt.Errorf("delete corrupt entry: %w", delErr)
		}
		return Entry{}, nil, false, nil
	}

	hit := c.now()
	if _, err := c.db.ExecContext(ctx, `UPDATE fingerprints SET last_hit_at = ? WHERE fingerprint = ?`,
		hit.Format(timeLayout), fp); err != nil {
		return Entry{}, nil, false, fmt.Errorf("record cache hit: %w", err)
	}
	entry.LastHitAt = hit
	return entry, decoded, true, nil
}

// Store inserts or replaces the entry for entry.Fingerprint. Counts and the
// algorithm are derived from p; CachedAt is set to the current time.
func (c *Cache) Store(ctx context.Context, entry Entry, p *plugin.Plugin) (Entry, error) {
	if p == nil {
		return Entry{}, errors.New("store: plugin is nil")
	}
	fp, err := NormalizeFingerprint(entry.Fingerprint)
	if err != nil {
		return Entry{}, err
	}
	payload, digest, err := encodePayload(p)
	if err != nil {
		return Entry{}, err
	}

	entry.Fingerprint = fp
	entry.Algorithm = contenthash.Algorithm
	entry.WorldCount = len(p.Worlds)
	entry.CellCount = len(p.Cells)
	entry.MasterCount = len(p.Header.Masters)
	entry.CachedAt = c.now()
	entry.LastHitAt = time.Time{}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO fingerprints (
            fingerprint, algorithm, source_path, size_bytes, world_count, cell_count, master_count,
            payload, payload_digest, cached_at, last_hit_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
        ON CONFLICT(fingerprint) DO UPDATE SET
            algorithm = excluded.algorithm,
            source_path = excluded.source_path,
            size_bytes = excluded.size_bytes,
            world_count = excluded.world_count,
            cell_count = excluded.cell_count,
            master_count = excluded.master_count,
            payload = excluded.payload,
            payload_digest = excluded.payload_digest,
            cached_at = excluded.cached_at,
            last_hit_at = NULL`,
		entry.Fingerprint,
		entry.Algorithm,
		nullableString(entry.SourcePath),
		entry.SizeBytes,
		entry.WorldCount,
		entry.CellCount,
		entry.MasterCount,
		payload,
		digest,
		entry.CachedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("store fingerprint: %w", err)
	}
	c.logger.Debug("cached plugin",
		logging.String(logging.FieldFingerprint, entry.Fingerprint),
		logging.Int("payload_bytes", len(payload)),
	)
	return entry, nil
}

// Remove deletes the entry for fingerprint.
func (c *Cache) Remove(ctx context.Context, fingerprint string) error {
	fp, err := NormalizeFingerprint(fingerprint)
	if err != nil {
		return err
	}
	res, err := c.db.ExecContext(ctx, `DELETE FROM fingerprints WHERE fingerprint = ?`, fp)
	if err != nil {
		return fmt.Errorf("remove fingerprint: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove fingerprint: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, component, "remove", "no entry for "+fp, nil)
	}
	return nil
}

// List returns all entries, newest first.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM fingerprints ORDER BY cached_at DESC, fingerprint`)
	if err != nil {
		return nil, fmt.Errorf("list fingerprints: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list fingerprints: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fingerprints: %w", err)
	}
	return entries, nil
}

// Count returns the number of cached entries.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM fingerprints`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count fingerprints: %w", err)
	}
	return count, nil
}

// Clear removes every entry and returns how many were deleted.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM fingerprints`)
	if err != nil {
		return 0, fmt.Errorf("clear fingerprints: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear fingerprints: %w", err)
	}
	return int(affected), nil
}

// Prune removes entries cached more than olderThan ago.
func (c *Cache) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, services.Wrap(services.ErrValidation, component, "prune", "age must be positive", nil)
	}
	cutoff := c.now().Add(-olderThan).Format(timeLayout)
	res, err := c.db.ExecContext(ctx, `DELETE FROM fingerprints WHERE cached_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune fingerprints: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune fingerprints: %w", err)
	}
	if affected > 0 {
		c.logger.Info("pruned cache entries",
			logging.Int64("removed", affected),
			logging.Duration("older_than", olderThan),
		)
	}
	return int(affected), nil
}

// NormalizeFingerprint trims and lowercases a base-36 fingerprint and
// rejects text that is not a valid 64-bit value.
func NormalizeFingerprint(fingerprint string) (string, error) {
	fp := strings.ToLower(strings.TrimSpace(fingerprint))
	if _, err := radix.Decode(fp, radix.Base36); err != nil {
		return "", services.Wrap(services.ErrValidation, component, "fingerprint",
			fmt.Sprintf("invalid fingerprint %q", fingerprint), err)
	}
	return fp, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner, extra ...any) (Entry, error) {
	var (
		entry      Entry
		sourcePath sql.NullString
		cachedAt   string
		lastHitAt  sql.NullString
	)
	dest := []any{
		&entry.Fingerprint,
		&entry.Algorithm,
		&sourcePath,
		&entry.SizeBytes,
		&entry.WorldCount,
		&entry.CellCount,
		&entry.MasterCount,
		&cachedAt,
		&lastHitAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Entry{}, err
	}
	entry.SourcePath = sourcePath.String
	entry.CachedAt = parseTime(cachedAt)
	if lastHitAt.Valid {
		entry.LastHitAt = parseTime(lastHitAt.String)
	}
	return entry, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
