package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var captured []string
	SetLogger(func(format string, v ...any) {
		captured = append(captured, fmt.Sprintf(format, v...))
	})

	Logf("run %s complete", "abc123")

	if len(captured) != 1 {
		t.Fatalf("got %d log lines, want 1", len(captured))
	}
	if captured[0] != "run abc123 complete" {
		t.Errorf("got %q, want %q", captured[0], "run abc123 complete")
	}
}

func TestSetLoggerNil(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...any) { called = true })
	SetLogger(nil)

	// Must neither panic nor reach the previous logger.
	Logf("muted")

	if called {
		t.Error("nil logger should silence output")
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}
