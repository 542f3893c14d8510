package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	} {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", in, got, want)
		}
	}
}

func TestNewLogger_Formats(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var js bytes.Buffer
	newLogger(&js, "info", "json", false).Info("server.start", "addr", "0.0.0.0:3000")
	var rec map[string]any
	if err := json.Unmarshal(js.Bytes(), &rec); err != nil {
		t.Fatalf("json output %q: %v", js.String(), err)
	}
	if rec["msg"] != "server.start" || rec["addr"] != "0.0.0.0:3000" || rec["source"] == nil {
		t.Fatalf("unexpected json record: %v", rec)
	}

	var pretty bytes.Buffer
	newLogger(&pretty, "debug", "pretty", false).Debug("seed.done", "spots", 6)
	if out := pretty.String(); !strings.Contains(out, "lvl=[DEBUG]") || !strings.Contains(out, "spots=6") {
		t.Fatalf("unexpected pretty output: %q", out)
	}
}
