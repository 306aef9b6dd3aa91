package logging

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Defaults(t *testing.T) {
	l, err := NewLogger(Config{})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l == nil {
		t.Fatal("nil logger")
	}
	l.Named("test").With(String("k", "v")).Debug("suppressed at info")
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	if _, err := NewLogger(Config{OutputPaths: []string{"/nonexistent-dir/x/y.log"}}); err == nil {
		t.Fatal("expected error for unopenable output path")
	}
}

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromCore(core).With(String("run_id", "r1"))

	l.Info("refresh done",
		Int("succeeded", 3),
		Int64("failed", 1),
		Float64("ratio", 0.75),
		Bool("partial", true),
		Duration("took", 2*time.Second),
		Err(errors.New("provider down")),
		Any("ids", []string{"a", "b"}),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	m := entries[0].ContextMap()
	if m["run_id"] != "r1" || m["succeeded"] != int64(3) || m["error"] != "provider down" || m["partial"] != true {
		t.Fatalf("unexpected context: %#v", m)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.With(String("a", "b")).Named("x").Error("ignored")
	if err := l.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}
