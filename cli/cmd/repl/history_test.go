package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestHistory_WriteLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"1 + 2", modeEval},
		{"list", modeCtrl},
		{"x = 3", modeEval},
		{"x = 3", modeEval}, // repeated last entry is skipped
		{"  ", modeEval},    // blank entry is skipped
	} {
		if _, err := h.WriteWithMode(e.Line, e.Mode); err != nil {
			t.Fatalf("write %q: %v", e.Line, err)
		}
	}

	if h.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", h.Len())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "E:1 + 2\nC:list\nE:x = 3\n"; string(data) != want {
		t.Errorf("expected file %q, got %q", want, string(data))
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if !slices.Equal(loaded.Entries(), h.Entries()) {
		t.Errorf("expected %v, got %v", h.Entries(), loaded.Entries())
	}

	if got := loaded.Lines(modeEval); !slices.Equal(got, []string{"1 + 2", "x = 3"}) {
		t.Errorf("unexpected eval lines %v", got)
	}

	if got := loaded.Lines(modeCtrl); !slices.Equal(got, []string{"list"}) {
		t.Errorf("unexpected command lines %v", got)
	}
}

func TestHistory_Duplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "a"} {
		if _, err := h.Write(line); err != nil {
			t.Fatal(err)
		}
	}

	// A control entry with the same text is distinct.
	if _, err := h.WriteWithMode("b", modeCtrl); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "E:b\nE:a\nC:b\n"; string(data) != want {
		t.Errorf("expected file %q, got %q", want, string(data))
	}
}

func TestHistory_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	var b strings.Builder
	for i := range maxHistory + 5 {
		b.WriteString("E:" + strings.Repeat("x", i+1) + "\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if h.Len() != maxHistory {
		t.Fatalf("expected %d entries, got %d", maxHistory, h.Len())
	}

	first, err := h.GetEntry(0)
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Line) != 6 {
		t.Errorf("expected oldest entries dropped, first is %d long", len(first.Line))
	}

	if _, err := h.GetEntry(h.Len()); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected out of bounds, got %v", err)
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:1+1", HistoryEntry{"1+1", modeEval}},
		{"C:quit", HistoryEntry{"quit", modeCtrl}},
		{"legacy", HistoryEntry{"legacy", modeEval}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := decodeEntry(tt.line); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}

			if tt.line != "legacy" && tt.want.encode() != tt.line+"\n" {
				t.Errorf("expected encode to restore %q", tt.line)
			}
		})
	}
}
