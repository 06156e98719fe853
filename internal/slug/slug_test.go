package slug

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World! 2026", "hello-world-2026"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"UPPER case Title", "upper-case-title"},
		{"special@#$chars%removed", "specialcharsremoved"},
		{"multiple   spaces", "multiple-spaces"},
		{"already-hyphenated-title", "already-hyphenated-title"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Generate(tt.in); got != tt.want {
			t.Errorf("Generate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateTruncates(t *testing.T) {
	long := strings.Repeat("word ", 50) // 250 chars before slugging
	got := Generate(long)
	if len(got) > MaxLength {
		t.Errorf("slug length %d exceeds max %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated slug has trailing hyphen: %q", got)
	}
}
