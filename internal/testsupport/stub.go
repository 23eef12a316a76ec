package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MinimalPluginJSON is the tool output for a plugin with one world and one
// exterior cell.
const MinimalPluginJSON = `{
  "header": {
    "version": 1.0,
    "num_records_and_groups": 0,
    "next_object_id": 1,
    "author": null,
    "description": null,
    "masters": []
  },
  "worlds": [{"form_id": 60, "editor_id": "Tamriel"}],
  "cells": [{"form_id": 6699, "editor_id": "TestCell", "x": 5, "y": -3, "world_form_id": 60, "is_persistent": false}]
}`

// StubParser describes the behaviour of a fake skyrim-cell-dump executable.
type StubParser struct {
	// Stdout is printed for parse invocations. Empty prints MinimalPluginJSON.
	Stdout   string
	Stderr   string
	ExitCode int
	// SleepSeconds delays the parse before output; the process is replaced by
	// sleep so a context kill stops it immediately.
	SleepSeconds int
	Version      string
	// ArgsFile, when set, receives the arguments of every parse invocation.
	ArgsFile string
	// CountFile, when set, gains one line per parse invocation.
	CountFile string
}

// WriteStubParser writes a shell script emulating skyrim-cell-dump into dir
// and returns its path.
func WriteStubParser(t testing.TB, dir string, stub StubParser) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, "skyrim-cell-dump")
	if err := os.WriteFile(target, []byte(stubScript(stub)), 0o755); err != nil {
		t.Fatalf("write stub parser: %v", err)
	}
	return target
}

// StubParserOnPath writes a stub parser and prepends its directory to PATH.
func StubParserOnPath(t *testing.T, stub StubParser) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "bin")
	target := WriteStubParser(t, dir, stub)
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return target
}

func stubScript(stub StubParser) string {
	version := stub.Version
	if version == "" {
		version = "skyrim-cell-dump 0.4.0"
	}
	stdout := stub.Stdout
	if stdout == "" {
		stdout = MinimalPluginJSON
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "if [ \"$1\" = \"--version\" ]; then\n  echo %s\n  exit 0\nfi\n", shellQuote(version))
	b.WriteString("if [ ! -f \"$1\" ]; then\n  echo \"input not found: $1\" >&2\n  exit 66\nfi\n")
	if stub.ArgsFile != "" {
		fmt.Fprintf(&b, "echo \"$@\" >> %s\n", shellQuote(stub.ArgsFile))
	}
	if stub.CountFile != "" {
		fmt.Fprintf(&b, "echo parsed >> %s\n", shellQuote(stub.CountFile))
	}
	if stub.SleepSeconds > 0 {
		fmt.Fprintf(&b, "exec sleep %d\n", stub.SleepSeconds)
	}
	if stub.Stderr != "" {
		fmt.Fprintf(&b, "echo %s >&2\n", shellQuote(stub.Stderr))
	}
	if stub.ExitCode != 0 {
		fmt.Fprintf(&b, "exit %d\n", stub.ExitCode)
	}
	b.WriteString("cat <<'CELLDUMP_EOF'\n")
	b.WriteString(stdout)
	b.WriteString("\nCELLDUMP_EOF\n")
	return b.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
