package signallog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"TransferScope/internal/model"
)

func TestWriteThenParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.log")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	t0 := time.Date(2025, 6, 1, 9, 30, 0, 250e6, time.UTC)
	if err := w.Record(t0, "true", "lab/status/power"); err != nil {
		t.Fatalf("failed to record: %v", err)
	}
	if err := w.Record(t0.Add(5*time.Second), "false", "lab/status/power"); err != nil {
		t.Fatalf("failed to record: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	events, err := NewParser("true", "false", zerolog.Nop()).ParseFile(path)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != model.SignalOn || events[1].Kind != model.SignalOff {
		t.Errorf("unexpected kinds: %v, %v", events[0].Kind, events[1].Kind)
	}
	if !events[0].Timestamp.Equal(time.Date(2025, 6, 1, 9, 30, 0, 250e6, time.UTC)) {
		t.Errorf("timestamp lost millisecond precision: %v", events[0].Timestamp)
	}
}

func TestParse_SkipsMalformedAndUnrelatedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.log")
	content := "garbage line\n" +
		"2025-06-01 09:30:00,100 - INFO - Published 'true' to subject 'lab/status/power'\n" +
		"2025-06-01 09:30:01.100 - INFO - Published 'ping' to subject 'lab/status/power'\n" +
		"2025-06-01 09:30:05.100 - INFO - Published 'false' to subject 'lab/status/power'\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	events, err := NewParser("true", "false", zerolog.Nop()).ParseFile(path)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	// Comma millisecond separator accepted; garbage and unrelated
	// payloads skipped.
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestParse_MissingFile(t *testing.T) {
	_, err := NewParser("true", "false", zerolog.Nop()).ParseFile(filepath.Join(t.TempDir(), "absent.log"))
	if !errors.Is(err, model.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestParse_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.log")
	if err := os.WriteFile(path, []byte("no signals here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewParser("true", "false", zerolog.Nop()).ParseFile(path)
	if !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
