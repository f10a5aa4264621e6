package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// capture runs fn with stdout redirected and returns what it printed.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(out)
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no arguments", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"emit without input", []string{"emit"}, 1},
		{"emit spec and library together", []string{"emit", "-spec", "x.yaml", "-library", "uuid"}, 1},
		{"convert without pattern", []string{"convert"}, 1},
		{"library", []string{"library"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int
			capture(t, func() { got = run(tt.args) })
			if got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestEmitCommand(t *testing.T) {
	out := capture(t, func() {
		if code := run([]string{"emit", "-spec", "testdata/version_spec.yaml", "-anchor"}); code != 0 {
			t.Errorf("run = %d, want 0", code)
		}
	})
	if got := strings.TrimSpace(out); got != `^v[0-9]+\.[0-9]+$` {
		t.Errorf("emitted %q", got)
	}
}

func TestEmitCommandFromLibrary(t *testing.T) {
	out := capture(t, func() {
		if code := run([]string{"emit", "-library", "iso-date"}); code != 0 {
			t.Errorf("run = %d, want 0", code)
		}
	})
	if got := strings.TrimSpace(out); got != "[0-9]{4}-[0-9]{2}-[0-9]{2}" {
		t.Errorf("emitted %q", got)
	}
}

func TestLintCommand(t *testing.T) {
	out := capture(t, func() {
		if code := run([]string{"lint", "-spec", "testdata/version_spec.yaml", "-dialect", "js"}); code != 0 {
			t.Errorf("run = %d, want 0", code)
		}
	})
	if !strings.Contains(out, "ok:") {
		t.Errorf("lint output %q", out)
	}
}

func TestConvertCommand(t *testing.T) {
	out := capture(t, func() {
		if code := run([]string{"convert", "-pattern", "(?P<n>[0-9]+)", "-from", "re2", "-to", "js"}); code != 0 {
			t.Errorf("run = %d, want 0", code)
		}
	})
	if got := strings.TrimSpace(out); got != "(?<n>[0-9]+)" {
		t.Errorf("converted %q", got)
	}
}

func TestTestCommand(t *testing.T) {
	out := capture(t, func() {
		code := run([]string{
			"test",
			"-spec", "testdata/version_spec.yaml",
			"-cases", "testdata/version_cases.yaml",
			"-dialect", "js",
		})
		if code != 0 {
			t.Errorf("run = %d, want 0", code)
		}
	})
	if !strings.Contains(out, "3 passed, 0 failed") {
		t.Errorf("test output %q", out)
	}
}

func TestGenCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "version.go")
	code := run([]string{
		"gen",
		"-spec", "testdata/version_spec.yaml",
		"-name", "version",
		"-package", "patterns",
		"-out", out,
		"-anchor",
	})
	if code != 0 {
		t.Fatalf("run = %d, want 0", code)
	}
	src, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(src), "VersionMatchString") {
		t.Errorf("generated file missing helper:\n%s", src)
	}
}
