package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"trace": TRACE,
		"DEBUG": DEBUG,
		"info":  INFO,
		"Warn":  WARN,
		"error": ERROR,
		"none":  NONE,
		"bogus": NONE,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if !ValidLevel("info") || ValidLevel("bogus") {
		t.Error("ValidLevel mismatch")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	saved := Log
	defer func() { Log = saved }()
	Log = New(&buf, WARN, true)

	Info("hidden %d", 1)
	Warn("shown %d", 2)
	Error("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at WARN: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 2") || !strings.Contains(out, "[ERROR] also shown") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestNoneDisablesEverything(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, NONE, false)
	l.log(ERROR, "x")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
