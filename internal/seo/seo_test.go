package seo

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestScorePerfect(t *testing.T) {
	// Every component at its upper boundary: 5×20 = 100.
	in := Input{
		Title:           strings.Repeat("t", 60),
		MetaDescription: strPtr(strings.Repeat("d", 160)),
		WordCount:       300,
		KeywordCount:    1,
		Slug:            "a-slug",
	}
	if got := Score(in); got != 100 {
		t.Errorf("Score = %d, want 100", got)
	}
}

func TestScoreTitleBoundaries(t *testing.T) {
	base := Input{
		MetaDescription: strPtr(strings.Repeat("d", 160)),
		WordCount:       300,
		KeywordCount:    1,
		Slug:            "a-slug",
	}

	tests := []struct {
		titleLen int
		want     int
	}{
		{60, 100}, // full title component
		{61, 95},  // drops from 20 to 15
		{70, 95},
		{71, 80}, // no title component at all
		{5, 100},
		{4, 95}, // below minimum still earns the ≤70 fallback
	}
	for _, tt := range tests {
		in := base
		in.Title = strings.Repeat("t", tt.titleLen)
		if got := Score(in); got != tt.want {
			t.Errorf("title length %d: Score = %d, want %d", tt.titleLen, got, tt.want)
		}
	}
}

func TestScoreMetaDescription(t *testing.T) {
	base := Input{
		Title:        strings.Repeat("t", 30),
		WordCount:    300,
		KeywordCount: 1,
		Slug:         "a-slug",
	}

	if got := Score(base); got != 80 {
		t.Errorf("no meta description: Score = %d, want 80", got)
	}

	in := base
	in.MetaDescription = strPtr(strings.Repeat("d", 119))
	if got := Score(in); got != 95 {
		t.Errorf("short meta description: Score = %d, want 95", got)
	}

	in.MetaDescription = strPtr(strings.Repeat("d", 120))
	if got := Score(in); got != 100 {
		t.Errorf("meta description 120: Score = %d, want 100", got)
	}

	in.MetaDescription = strPtr(strings.Repeat("d", 181))
	if got := Score(in); got != 80 {
		t.Errorf("oversized meta description: Score = %d, want 80", got)
	}
}

func TestScoreWordCountTiers(t *testing.T) {
	in := Input{Title: strings.Repeat("t", 30), Slug: "s", KeywordCount: 1}

	in.WordCount = 199
	if got := Score(in); got != 60 {
		t.Errorf("199 words: Score = %d, want 60", got)
	}
	in.WordCount = 200
	if got := Score(in); got != 75 {
		t.Errorf("200 words: Score = %d, want 75", got)
	}
	in.WordCount = 300
	if got := Score(in); got != 80 {
		t.Errorf("300 words: Score = %d, want 80", got)
	}
}

func TestScoreCountsRunesNotBytes(t *testing.T) {
	// 25 CJK runes encode to 75 bytes; the title component depends on the
	// character count, so this sits inside the [5,60] band.
	in := Input{Title: strings.Repeat("日", 25)}
	if got := Score(in); got != 20 {
		t.Errorf("25-rune title: Score = %d, want 20", got)
	}

	// 150 two-byte runes: inside [120,160] by characters, 300 bytes.
	in = Input{MetaDescription: strPtr(strings.Repeat("é", 150))}
	if got := Score(in); got != 35 {
		t.Errorf("150-rune meta description: Score = %d, want 35", got)
	}
}

func TestScoreEmpty(t *testing.T) {
	// Empty input still earns the ≤70 title fallback.
	if got := Score(Input{}); got != 15 {
		t.Errorf("Score(zero) = %d, want 15", got)
	}
}
