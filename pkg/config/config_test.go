package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thomasrohde/biglisp/go/pkg/config"
	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	writeFile(t, filepath.Join(dir, config.ProjectFile), `
log_level = "debug"
max_iterations = 500
time_ms = 250
pretty = false
`)

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.MaxIterations != 500 || cfg.TimeMs != 250 || cfg.Pretty {
		t.Errorf("unexpected config: %+v", cfg)
	}
	// unset keys keep their defaults
	if cfg.MaxDepth != evaluator.DefaultMaxDepth {
		t.Errorf("got max_depth %d", cfg.MaxDepth)
	}
	if cfg.Source != filepath.Join(dir, config.ProjectFile) {
		t.Errorf("got source %q", cfg.Source)
	}
	want := evaluator.Budget{MaxDepth: evaluator.DefaultMaxDepth, MaxIterations: 500, TimeMs: 250}
	if cfg.Budget() != want {
		t.Errorf("got budget %+v", cfg.Budget())
	}
}

func TestLoadUserFileFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, config.UserFile), `max_depth = 64`)

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxDepth != 64 {
		t.Errorf("got max_depth %d", cfg.MaxDepth)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source != "" || cfg.LogLevel != "none" || !cfg.Pretty {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := map[string]string{
		"syntax":      `max_depth = `,
		"unknown key": `colour = true`,
		"bad level":   `log_level = "loud"`,
		"negative":    `time_ms = -1`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, config.ProjectFile), content)
			if _, err := config.Load(dir); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.TimeMs = 1000
	cfg.HistoryFile = "~/.lisp_history"

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "time_ms = 1000") {
		t.Errorf("unexpected encoding:\n%s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, buf.String())
	back, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if back.TimeMs != 1000 || back.HistoryFile != cfg.HistoryFile {
		t.Errorf("got %+v", back)
	}
}

func TestHistoryPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := config.Default()
	if got := cfg.HistoryPath(); got != filepath.Join(home, ".biglisp", "history") {
		t.Errorf("got %q", got)
	}
	cfg.HistoryFile = "~/h.txt"
	if got := cfg.HistoryPath(); got != filepath.Join(home, "h.txt") {
		t.Errorf("got %q", got)
	}
}
