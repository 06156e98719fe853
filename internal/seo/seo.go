// Package seo implements the scoring heuristic applied to every document
// on content-affecting mutations. The score is a 0-100 sum of fixed
// component weights, so boundary behavior is exact and testable.
package seo

import "unicode/utf8"

// Input carries the document fields the score depends on. MetaDescription
// is nil when the document has none set.
type Input struct {
	Title           string
	MetaDescription *string
	WordCount       int
	KeywordCount    int
	Slug            string
}

// Score computes the SEO score for a document.
//
// Components: title length in [5,60] earns 20, up to 70 earns 15; meta
// description length in [120,160] earns 20, up to 180 earns 15 (absent
// earns nothing); 300+ words earn 20, 200+ earn 15; at least one keyword
// earns 20; a non-empty slug earns 20. The total is capped at 100.
func Score(in Input) int {
	score := 0

	// Lengths are counted in runes, matching the validation bounds.
	titleLen := utf8.RuneCountInString(in.Title)
	switch {
	case titleLen >= 5 && titleLen <= 60:
		score += 20
	case titleLen <= 70:
		score += 15
	}

	if in.MetaDescription != nil {
		descLen := utf8.RuneCountInString(*in.MetaDescription)
		switch {
		case descLen >= 120 && descLen <= 160:
			score += 20
		case descLen <= 180:
			score += 15
		}
	}

	switch {
	case in.WordCount >= 300:
		score += 20
	case in.WordCount >= 200:
		score += 15
	}

	if in.KeywordCount > 0 {
		score += 20
	}

	if in.Slug != "" {
		score += 20
	}

	if score > 100 {
		return 100
	}
	return score
}
