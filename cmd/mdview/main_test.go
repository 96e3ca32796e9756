package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

func writeEmptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunDumpFromStdin(t *testing.T) {
	cfg := writeEmptyConfig(t)
	var stdout, stderr bytes.Buffer
	stdin := strings.NewReader("# Title\n\nhello world\n")

	code := run([]string{"--dump", "-w", "40", "-c", cfg}, stdin, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr.String())
	}
	out := ansi.Strip(stdout.String())
	if !strings.Contains(out, "# Title") || !strings.Contains(out, "hello world") {
		t.Fatalf("dump output missing text: %q", out)
	}
}

func TestRunDumpFromFile(t *testing.T) {
	cfg := writeEmptyConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("some *text*\n\n![pic](missing.png)\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	var stdout, stderr bytes.Buffer
	code := run([]string{"--dump", "--width", "30", "--config", cfg, path}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr.String())
	}
	out := ansi.Strip(stdout.String())
	if !strings.Contains(out, "some text") {
		t.Fatalf("dump output = %q", out)
	}
	if !strings.Contains(out, "pic") {
		t.Fatalf("image alt text missing: %q", out)
	}
}

func TestRunDumpMissingFile(t *testing.T) {
	cfg := writeEmptyConfig(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"--dump", "-c", cfg, filepath.Join(t.TempDir(), "nope.md")}, strings.NewReader(""), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "nope.md") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunPrintConfigAppliesFlags(t *testing.T) {
	cfg := writeEmptyConfig(t)
	var stdout, stderr bytes.Buffer
	args := []string{"--print-config", "-c", cfg, "--code-overflow", "scroll", "--log-level", "debug", "--images", "none"}
	if code := run(args, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"scroll", "debug", "enabled = false"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	cfg := writeEmptyConfig(t)
	tests := []struct {
		name string
		args []string
	}{
		{"overflow", []string{"--print-config", "-c", cfg, "--code-overflow", "wrap"}},
		{"images", []string{"--print-config", "-c", cfg, "--images", "sixel"}},
		{"log level", []string{"--print-config", "-c", cfg, "--log-level", "loud"}},
		{"two files", []string{"--dump", "-c", cfg, "a.md", "b.md"}},
		{"unknown flag", []string{"--bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, strings.NewReader(""), &stdout, &stderr); code != 2 {
				t.Fatalf("exit code = %d, want 2 (stderr %q)", code, stderr.String())
			}
		})
	}
}

func TestRunBadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[code]\nwidth = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--print-config", "-c", path}, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestResolveWidth(t *testing.T) {
	if got := resolveWidth(42); got != 42 {
		t.Fatalf("resolveWidth(42) = %d", got)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.Skip("stdout is a terminal")
	}
	t.Setenv("COLUMNS", "57")
	if got := resolveWidth(0); got != 57 {
		t.Fatalf("COLUMNS width = %d, want 57", got)
	}
	t.Setenv("COLUMNS", "junk")
	if got := resolveWidth(0); got != defaultWidth {
		t.Fatalf("fallback width = %d, want %d", got, defaultWidth)
	}
}
