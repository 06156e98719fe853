package models

import "testing"

func TestCountWords(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"one two three", 3},
		{"tabs\tand\nnewlines  count", 4},
	}
	for _, tt := range tests {
		if got := CountWords(tt.body); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.body, got, tt.want)
		}
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 1},   // never below one minute
		{50, 1},  // rounds to 0, clamped
		{100, 1}, // 0.5 rounds to even 0, clamped
		{200, 1},
		{300, 2}, // 1.5 rounds to even 2
		{400, 2},
		{500, 2}, // 2.5 rounds to even 2, not 3
		{700, 4}, // 3.5 rounds to even 4
		{1000, 5},
	}
	for _, tt := range tests {
		if got := ReadingTime(tt.words); got != tt.want {
			t.Errorf("ReadingTime(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestDocumentStatusValid(t *testing.T) {
	for _, s := range []DocumentStatus{StatusDraft, StatusPublished, StatusScheduled, StatusArchived} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if DocumentStatus("deleted").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}
