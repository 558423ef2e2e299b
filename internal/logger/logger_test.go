package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestZapLoggerWritesObjectField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.InfoObj("table recreated", "table", map[string]any{"name": "ltv_driver"})
	log.DebugObj("request", "status", 200)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	tbl, ok := fields["table"].(map[string]any)
	if !ok || tbl["name"] != "ltv_driver" {
		t.Fatalf("unexpected fields %#v", fields)
	}
}

func TestEnsureFallsBackToNop(t *testing.T) {
	if _, ok := Ensure(nil).(NopLogger); !ok {
		t.Fatalf("expected NopLogger")
	}
}

func TestCloseSyncsWrappedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := New(zap.New(core))
	log.InfoObj("done", "count", 1)

	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}

	var nilLogger *ZapLogger
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("Close on nil logger: %v", err)
	}
}
