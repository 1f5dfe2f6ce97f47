package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level string
		debug bool
		warn  bool
	}{
		{"debug", true, true},
		{"", false, true},
		{"info", false, true},
		{"error", false, false},
		{"WARN", false, true},
	}
	ctx := context.Background()
	for _, c := range cases {
		l := New(c.level)
		if got := l.Enabled(ctx, slog.LevelDebug); got != c.debug {
			t.Errorf("New(%q) debug enabled = %v", c.level, got)
		}
		if got := l.Enabled(ctx, slog.LevelWarn); got != c.warn {
			t.Errorf("New(%q) warn enabled = %v", c.level, got)
		}
	}
}

func TestSetNilKeepsLogger(t *testing.T) {
	old := L
	Set(nil)
	if L != old {
		t.Fatal("Set(nil) must not replace the logger")
	}
	repl := New("debug")
	Set(repl)
	t.Cleanup(func() { Set(old) })
	if L != repl {
		t.Fatal("Set must install the new logger")
	}
}
