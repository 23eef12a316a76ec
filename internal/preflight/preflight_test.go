package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"celldump/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_MissingButCreatable(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope", "deeper"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckParser(t *testing.T) {
	binary := testsupport.WriteStubParser(t, filepath.Join(t.TempDir(), "bin"), testsupport.StubParser{Version: "skyrim-cell-dump 1.2.3"})

	result := CheckParser(context.Background(), binary, 5*time.Second)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "skyrim-cell-dump 1.2.3") {
		t.Fatalf("expected version in detail, got %q", result.Detail)
	}
}

func TestCheckParserOnPath(t *testing.T) {
	testsupport.StubParserOnPath(t, testsupport.StubParser{})

	result := CheckParser(context.Background(), "skyrim-cell-dump", 5*time.Second)
	if !result.Passed {
		t.Fatalf("expected PATH lookup to succeed, got: %s", result.Detail)
	}
}

func TestCheckParserMissing(t *testing.T) {
	for _, binary := range []string{"", "clearly-not-present-binary"} {
		result := CheckParser(context.Background(), binary, time.Second)
		if result.Passed || result.Detail == "" {
			t.Fatalf("expected failure with detail for %q, got %+v", binary, result)
		}
	}
}

func TestCheckCacheDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.db")

	result := CheckCacheDatabase(context.Background(), path)
	if !result.Passed || !strings.Contains(result.Detail, "not created yet") {
		t.Fatalf("expected pass for missing cache, got %+v", result)
	}

	if err := os.WriteFile(path, []byte("definitely not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCacheDatabase(context.Background(), path); result.Passed {
		t.Fatalf("expected failure for garbage database, got %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubParser(testsupport.StubParser{}))

	results := RunAll(context.Background(), cfg)
	if len(results) != 4 {
		t.Fatalf("expected parser, cache dir, cache db and log dir checks, got %+v", results)
	}
	if !Passed(results) {
		t.Fatalf("expected all checks to pass, got %+v", results)
	}

	disabled := testsupport.NewConfig(t, testsupport.WithCacheDisabled(), testsupport.WithParserBinary("clearly-not-present-binary"))
	disabled.Logging.Dir = ""
	results = RunAll(context.Background(), disabled)
	if len(results) != 1 || Passed(results) {
		t.Fatalf("expected single failing parser check, got %+v", results)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
