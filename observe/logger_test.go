package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	log.Debug(ctx, "d")
	log.Info(ctx, "i")
	log.Warn(ctx, "w")
	log.Error(ctx, "e")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0]["level"] != "warn" || entries[1]["level"] != "error" {
		t.Errorf("levels = %v, %v", entries[0]["level"], entries[1]["level"])
	}
}

func TestLogger_WithCacheAndRedaction(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("debug", &buf).WithCache(CacheMeta{
		Cache:    "users",
		Policy:   "lru",
		Function: "app.Lookup",
	})

	log.Info(context.Background(), "stored",
		F("value", "secret payload"),
		F("args", []int{1, 2}),
		F("error", errors.New("boom")),
		F("evicted", 3),
	)

	e := decodeLines(t, &buf)[0]
	want := map[string]any{
		"cache.name":     "users",
		"cache.policy":   "lru",
		"cache.function": "app.Lookup",
		"value":          "[REDACTED]",
		"args":           "[REDACTED]",
		"error":          "boom",
		"evicted":        float64(3),
		"msg":            "stored",
	}
	for k, v := range want {
		if e[k] != v {
			t.Errorf("%s = %v, want %v", k, e[k], v)
		}
	}
	if _, ok := e["cache.variant"]; ok {
		t.Error("empty variant should be omitted")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
		"bogus": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	log.Error(context.Background(), "ignored")
	if log.WithCache(CacheMeta{}) == nil {
		t.Error("WithCache() returned nil")
	}
}
