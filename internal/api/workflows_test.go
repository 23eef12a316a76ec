package api_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"celldump/internal/api"
	"celldump/internal/contenthash"
	"celldump/internal/fpcache"
	"celldump/internal/nativeplugin"
	"celldump/internal/services"
	"celldump/internal/testsupport"
)

func openCache(t *testing.T) *fpcache.Cache {
	t.Helper()
	cache, err := fpcache.Open(filepath.Join(t.TempDir(), "fingerprints.db"), nil)
	if err != nil {
		t.Fatalf("fpcache.Open: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

type countingParser struct {
	calls int
	fail  string
}

func (p *countingParser) Parse(_ context.Context, data []byte) (*nativeplugin.Plugin, error) {
	p.calls++
	if p.fail != "" && strings.Contains(string(data), p.fail) {
		return nil, errors.New("unsupported record type")
	}
	return &nativeplugin.Plugin{
		Header: nativeplugin.Header{Version: 1.7, Masters: []string{"Skyrim.esm"}},
		Worlds: []nativeplugin.World{{FormID: 0x3C, EditorID: "Tamriel"}},
		Cells:  []nativeplugin.Cell{{FormID: 1}, {FormID: 2}},
	}, nil
}

func TestParseFileCachesResult(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	countFile := filepath.Join(testsupport.BaseDir(cfg), "count.txt")
	cfg.Parser.Binary = testsupport.WriteStubParser(t, filepath.Join(testsupport.BaseDir(cfg), "bin"),
		testsupport.StubParser{CountFile: countFile})

	parser, err := api.NewParser(cfg, nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	cache, err := api.OpenCache(cfg, nil)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	pluginPath := filepath.Join(testsupport.BaseDir(cfg), "mods", "Test.esp")
	testsupport.WriteFile(t, pluginPath, []byte("TES4 test plugin"))

	req := api.ParseFileRequest{Path: pluginPath, Parser: parser, Cache: cache}
	first, err := api.ParseFile(context.Background(), req)
	if err != nil {
		t.Fatalf("first ParseFile: %v", err)
	}
	if first.FromCache || first.Fingerprint != contenthash.String([]byte("TES4 test plugin")) || first.SizeBytes != 16 {
		t.Fatalf("unexpected first result %+v", first)
	}

	second, err := api.ParseFile(context.Background(), req)
	if err != nil {
		t.Fatalf("second ParseFile: %v", err)
	}
	if !second.FromCache {
		t.Fatal("expected second parse to come from cache")
	}
	if len(second.Plugin.Cells) != 1 || *second.Plugin.Cells[0].EditorID != "TestCell" {
		t.Fatalf("unexpected cached plugin %+v", second.Plugin)
	}

	counts, err := os.ReadFile(countFile)
	if err != nil {
		t.Fatalf("read count file: %v", err)
	}
	if n := strings.Count(string(counts), "parsed"); n != 1 {
		t.Fatalf("expected a single parser invocation, got %d", n)
	}
}

func TestParseFileWithoutCacheAlwaysParses(t *testing.T) {
	parser := &countingParser{}
	path := filepath.Join(t.TempDir(), "Plugin.esm")
	testsupport.WriteFile(t, path, []byte("plugin"))

	for range 2 {
		result, err := api.ParseFile(context.Background(), api.ParseFileRequest{Path: path, Parser: parser})
		if err != nil {
			t.Fatalf("ParseFile: %v", err)
		}
		if result.FromCache {
			t.Fatal("expected no cache use")
		}
	}
	if parser.calls != 2 {
		t.Fatalf("expected 2 parser calls, got %d", parser.calls)
	}
}

func TestParseFileFromData(t *testing.T) {
	result, err := api.ParseFile(context.Background(), api.ParseFileRequest{Data: []byte("skyrim"), Parser: &countingParser{}})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if result.Fingerprint != "7rklmfhhtsq5" || result.Path != "" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestParseFileErrors(t *testing.T) {
	ctx := context.Background()

	_, err := api.ParseFile(ctx, api.ParseFileRequest{Path: filepath.Join(t.TempDir(), "missing.esp"), Parser: &countingParser{}})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = api.ParseFile(ctx, api.ParseFileRequest{Parser: &countingParser{}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error without path or data, got %v", err)
	}

	cache := openCache(t)
	path := filepath.Join(t.TempDir(), "Broken.esp")
	testsupport.WriteFile(t, path, []byte("bad plugin"))
	_, err = api.ParseFile(ctx, api.ParseFileRequest{Path: path, Parser: &countingParser{fail: "bad"}, Cache: cache})
	var parseErr *nativeplugin.ParseError
	if !errors.As(err, &parseErr) || !strings.Contains(err.Error(), path) {
		t.Fatalf("expected ParseError naming the path, got %v", err)
	}
	if count, _ := cache.Count(ctx); count != 0 {
		t.Fatalf("failed parse must not be cached, count=%d", count)
	}
}

func TestHashFiles(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.esp")
	large := filepath.Join(dir, "large.esm")
	testsupport.WriteFile(t, small, []byte("skyrim"))
	testsupport.WriteSizedFile(t, large, 200*1024+17)

	results, err := api.HashFiles([]string{small, large})
	if err != nil {
		t.Fatalf("HashFiles: %v", err)
	}
	if results[0].Fingerprint != "7rklmfhhtsq5" || results[0].Sum != 1022160404940209069 || results[0].SizeBytes != 6 {
		t.Fatalf("unexpected small result %+v", results[0])
	}
	data, err := os.ReadFile(large)
	if err != nil {
		t.Fatalf("read large: %v", err)
	}
	if results[1].Sum != contenthash.Sum64(data) || results[1].SizeBytes != int64(len(data)) {
		t.Fatalf("streaming hash disagrees with one-shot hash: %+v", results[1])
	}

	partial, err := api.HashFiles([]string{small, filepath.Join(dir, "absent.esp")})
	if !errors.Is(err, services.ErrNotFound) || len(partial) != 1 {
		t.Fatalf("expected not found after one result, got %d results err=%v", len(partial), err)
	}
}

func TestIsPluginFile(t *testing.T) {
	cases := map[string]bool{
		"Skyrim.esm":     true,
		"Update.ESM":     true,
		"mod.Esp":        true,
		"light.esl":      true,
		"readme.txt":     false,
		"archive.bsa":    false,
		"esp":            false,
		"mod.esp.backup": false,
	}
	for name, want := range cases {
		if got := api.IsPluginFile(name); got != want {
			t.Errorf("IsPluginFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "b", "Second.ESP"), []byte("second"))
	testsupport.WriteFile(t, filepath.Join(root, "a", "First.esm"), []byte("first"))
	testsupport.WriteFile(t, filepath.Join(root, "a", "Broken.esl"), []byte("bad"))
	testsupport.WriteFile(t, filepath.Join(root, "notes.txt"), []byte("ignored"))

	cache := openCache(t)
	parser := &countingParser{fail: "bad"}
	req := api.ScanRequest{Dir: root, Parser: parser, Cache: cache, LockPath: filepath.Join(t.TempDir(), "scan.lock")}

	summary, err := api.ScanDirectory(context.Background(), req)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if summary.Total != 3 || summary.Parsed != 2 || summary.Cached != 0 || len(summary.Failures) != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !strings.HasSuffix(summary.Failures[0].Path, "Broken.esl") {
		t.Fatalf("unexpected failure %+v", summary.Failures[0])
	}
	if !strings.HasSuffix(summary.Items[0].Path, filepath.Join("a", "First.esm")) ||
		!strings.HasSuffix(summary.Items[1].Path, filepath.Join("b", "Second.ESP")) {
		t.Fatalf("expected lexical order, got %+v", summary.Items)
	}
	if summary.Items[0].Worlds != 1 || summary.Items[0].Cells != 2 {
		t.Fatalf("unexpected item counts %+v", summary.Items[0])
	}

	again, err := api.ScanDirectory(context.Background(), req)
	if err != nil {
		t.Fatalf("second ScanDirectory: %v", err)
	}
	if again.Cached != 2 || again.Parsed != 0 {
		t.Fatalf("expected cache hits on rescan, got %+v", again)
	}
}

func TestScanDirectoryLockContention(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "scan.lock")
	held := flock.New(lockPath)
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, err = api.ScanDirectory(context.Background(), api.ScanRequest{Dir: t.TempDir(), Parser: &countingParser{}, LockPath: lockPath})
	if !errors.Is(err, api.ErrScanInProgress) {
		t.Fatalf("expected scan in progress, got %v", err)
	}
}

func TestScanDirectoryValidatesInput(t *testing.T) {
	ctx := context.Background()
	if _, err := api.ScanDirectory(ctx, api.ScanRequest{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := api.ScanDirectory(ctx, api.ScanRequest{Dir: filepath.Join(t.TempDir(), "nope")}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	file := filepath.Join(t.TempDir(), "file.esp")
	testsupport.WriteFile(t, file, []byte("x"))
	if _, err := api.ScanDirectory(ctx, api.ScanRequest{Dir: file}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for file, got %v", err)
	}
}

func TestScanDirectoryStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "One.esp"), []byte("one"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	parser := &countingParser{}
	_, err := api.ScanDirectory(ctx, api.ScanRequest{Dir: root, Parser: parser, Logger: logger})
	if !errors.Is(err, context.Canceled) || parser.calls != 0 {
		t.Fatalf("expected cancellation before parsing, calls=%d err=%v", parser.calls, err)
	}
	for _, want := range []string{`"level":"ERROR"`, `"event_type":"scan_aborted"`, `"remaining":1`} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("expected %s in log output %s", want, logs.String())
		}
	}
}

func TestOpenCacheDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCacheDisabled())
	if _, err := api.OpenCache(cfg, nil); !errors.Is(err, api.ErrCacheDisabled) {
		t.Fatalf("expected ErrCacheDisabled, got %v", err)
	}
	if _, err := api.NewParser(nil, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
