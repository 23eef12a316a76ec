package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"celldump/internal/api"
	"celldump/internal/fpcache"
	"celldump/internal/preflight"
	"celldump/internal/services"
	"celldump/internal/testsupport"
)

func TestHashCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Skyrim.esm")
	testsupport.WriteFile(t, path, []byte("skyrim"))

	out, _, err := runCLI(t, nil, "hash", path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	requireContains(t, out, "7rklmfhhtsq5  1022160404940209069  "+path)

	out, _, err = runCLI(t, strings.NewReader("skyrim"), "hash", "--stdin")
	if err != nil {
		t.Fatalf("hash --stdin: %v", err)
	}
	requireContains(t, out, "7rklmfhhtsq5  1022160404940209069  -")

	out, _, err = runCLI(t, nil, "--format", "json", "hash", path)
	if err != nil {
		t.Fatalf("hash json: %v", err)
	}
	var results []api.HashResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(results) != 1 || results[0].Sum != 1022160404940209069 || results[0].SizeBytes != 6 {
		t.Fatalf("unexpected results %+v", results)
	}

	out, _, err = runCLI(t, nil, "--format", "table", "hash", path)
	if err != nil {
		t.Fatalf("hash table: %v", err)
	}
	requireContains(t, out, "FINGERPRINT")
	requireContains(t, out, "7rklmfhhtsq5")
}

func TestHashCommandErrors(t *testing.T) {
	if _, _, err := runCLI(t, nil, "hash"); err == nil {
		t.Fatal("expected error without arguments")
	}
	if _, _, err := runCLI(t, strings.NewReader("x"), "hash", "--stdin", "file.esp"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, _, err := runCLI(t, nil, "hash", filepath.Join(t.TempDir(), "absent.esp"))
	if services.ExitCode(err) != services.ExitNotFound {
		t.Fatalf("expected not-found exit code, got %d (%v)", services.ExitCode(err), err)
	}
	_, _, err = runCLI(t, nil, "--format", "xml", "hash", "--stdin")
	if services.ExitCode(err) != services.ExitConfiguration {
		t.Fatalf("expected configuration exit code for bad format, got %v", err)
	}
}

func TestParseCommandUsesCache(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.StubParser{})
	path := env.writePlugin(t, "Test.esp", "TES4 plugin")

	out, _, err := env.run(t, nil, "parse", path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	requireContains(t, out, "(parsed)")
	requireContains(t, out, "0x0000003C Tamriel")
	requireContains(t, out, "0x00001A2B TestCell (5, -3) world 0x0000003C")
	requireContains(t, out, "Author:             -")

	out, _, err = env.run(t, nil, "parse", path)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	requireContains(t, out, "(cached)")

	out, _, err = env.run(t, nil, "parse", "--no-cache", path)
	if err != nil {
		t.Fatalf("parse --no-cache: %v", err)
	}
	requireContains(t, out, "(parsed)")
}

func TestParseCommandStructuredFormats(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.StubParser{})
	path := env.writePlugin(t, "Test.esp", "TES4 plugin")

	out, _, err := env.run(t, nil, "--format", "json", "parse", path)
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	var result api.ParseFileResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if result.Plugin == nil || len(result.Plugin.Cells) != 1 || result.Plugin.Header.Author != nil {
		t.Fatalf("unexpected json result %+v", result)
	}
	requireContains(t, out, `"author": null`)

	out, _, err = env.run(t, nil, "--format", "yaml", "parse", path)
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	requireContains(t, out, "editor_id: Tamriel")

	out, _, err = env.run(t, nil, "--format", "cbor", "parse", path)
	if err != nil {
		t.Fatalf("parse cbor: %v", err)
	}
	var fromCBOR api.ParseFileResult
	if err := cbor.Unmarshal([]byte(out), &fromCBOR); err != nil {
		t.Fatalf("decode cbor: %v", err)
	}
	if fromCBOR.Fingerprint != result.Fingerprint || fromCBOR.Plugin.Worlds[0].EditorID != "Tamriel" {
		t.Fatalf("unexpected cbor result %+v", fromCBOR)
	}

	out, _, err = env.run(t, nil, "--format", "table", "parse", path)
	if err != nil {
		t.Fatalf("parse table: %v", err)
	}
	requireContains(t, out, "0x0000003C Tamriel")
}

func TestParseCommandStdin(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.StubParser{})

	out, _, err := env.run(t, bytes.NewReader([]byte("skyrim")), "parse", "-")
	if err != nil {
		t.Fatalf("parse -: %v", err)
	}
	requireContains(t, out, "<stdin>")
	requireContains(t, out, "7rklmfhhtsq5")
}

func TestParseCommandParserFailure(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.StubParser{Stderr: "not a TES4 file", ExitCode: 3})
	path := env.writePlugin(t, "Broken.esp", "garbage")

	_, _, err := env.run(t, nil, "parse", path)
	if !errors.Is(err, services.ErrExternalTool) || services.ExitCode(err) != services.ExitExternalTool {
		t.Fatalf("expected external tool failure, got %v", err)
	}
	requireContains(t, err.Error(), "not a TES4 file")
}

func TestScanAndCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.StubParser{})
	first := env.writePlugin(t, "First.esm", "first plugin")
	env.writePlugin(t, "Second.esp", "second plugin")
	env.writePlugin(t, "readme.txt", "ignored")

	out, _, err := env.run(t, nil, "scan", filepath.Join(env.baseDir, "mods"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "2 plugins, 2 parsed, 0 cached, 0 failed")

	out, _, err = env.run(t, nil, "--format", "json", "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	var entries []fpcache.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}

	hashOut, _, err := runCLI(t, nil, "hash", first)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	fp := strings.Fields(hashOut)[0]

	out, _, err = env.run(t, nil, "cache", "show", strings.ToUpper(fp))
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	requireContains(t, out, "Fingerprint:        "+fp+" (seahash)")
	requireContains(t, out, "Source:             "+first)

	out, _, err = env.run(t, nil, "cache", "list")
	if err != nil {
		t.Fatalf("cache list text: %v", err)
	}
	requireContains(t, out, fp)

	if _, _, err := env.run(t, nil, "cache", "remove", fp); err != nil {
		t.Fatalf("cache remove: %v", err)
	}
	_, _, err = env.run(t, nil, "cache", "show", fp)
	if services.ExitCode(err) != services.ExitNotFound {
		t.Fatalf("expected not found after remove, got %v", err)
	}

	out, _, err = env.run(t, nil, "cache", "prune", "--older-than", "720h")
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	requireContains(t, out, "Pruned 0 cache entries")

	out, _, err = env.run(t, nil, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 cache entries")

	out, _, err = env.run(t, nil, "cache", "list")
	if err != nil {
		t.Fatalf("cache list empty: %v", err)
	}
	requireContains(t, out, "Cache is empty")
}

func TestScanCommandReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.StubParser{Stdout: "not json"})
	env.writePlugin(t, "Bad.esp", "bad")

	out, _, err := env.run(t, nil, "scan", filepath.Join(env.baseDir, "mods"))
	if err == nil {
		t.Fatal("expected scan to report failures")
	}
	requireContains(t, out, "1 failed")
	requireContains(t, out, "Bad.esp")
}

func TestConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.StubParser{})

	out, _, err := env.run(t, nil, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	out, _, err = env.run(t, nil, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[parser]")
	requireContains(t, out, env.cfg.Parser.Binary)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, nil, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, nil, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("[parser]\ntimeout_seconds = 7200\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err = runCLI(t, nil, "--config", bad, "config", "validate")
	if services.ExitCode(err) != services.ExitConfiguration {
		t.Fatalf("expected configuration exit code, got %v", err)
	}
}

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.StubParser{Version: "skyrim-cell-dump 0.9.1"})

	out, _, err := env.run(t, nil, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Plugin parser:")
	requireContains(t, out, "skyrim-cell-dump 0.9.1")

	out, _, err = env.run(t, nil, "--format", "json", "doctor")
	if err != nil {
		t.Fatalf("doctor json: %v", err)
	}
	var results []preflight.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if !preflight.Passed(results) {
		t.Fatalf("expected passing results, got %+v", results)
	}
}

func TestDoctorCommandFailsWithoutParser(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.StubParser{})
	env.cfg.Parser.Binary = filepath.Join(env.baseDir, "missing-binary")
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := env.run(t, nil, "doctor")
	if err == nil {
		t.Fatal("expected doctor to fail")
	}
	requireContains(t, out, "[FAIL]")
}
