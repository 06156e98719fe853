package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus represents the publishing state of a document.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusPublished DocumentStatus = "published"
	StatusScheduled DocumentStatus = "scheduled"
	StatusArchived  DocumentStatus = "archived"
)

// Valid reports whether s is one of the known document statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusScheduled, StatusArchived:
		return true
	}
	return false
}

// Document is the mutable, currently-visible state of a blog post.
// The derived fields (WordCount, ReadingTime, SEOScore) are recomputed
// on every committed mutation of title or body and are never stale.
type Document struct {
	ID              uuid.UUID      `json:"id"`
	OwnerID         uuid.UUID      `json:"owner_id"`
	Title           string         `json:"title"`
	Slug            string         `json:"slug"`
	Body            string         `json:"body"`
	MetaDescription *string        `json:"meta_description,omitempty"`
	MetaKeywords    *string        `json:"meta_keywords,omitempty"`
	Status          DocumentStatus `json:"status"`
	SEOScore        int            `json:"seo_score"`
	WordCount       int            `json:"word_count"`
	ReadingTime     int            `json:"reading_time"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Version is an immutable snapshot of a document at a point in time.
// Version numbers are strictly increasing per document, assigned
// transactionally by the store; gaps only ever come from pruning.
type Version struct {
	ID            uuid.UUID `json:"id"`
	DocumentID    uuid.UUID `json:"document_id"`
	VersionNumber int       `json:"version_number"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	WordCount     int       `json:"word_count"`
	ChangeSummary string    `json:"change_summary"`
	CreatedAt     time.Time `json:"created_at"`
}

// CountWords returns the whitespace-delimited token count of body.
func CountWords(body string) int {
	return len(strings.Fields(body))
}

// ReadingTime estimates reading time in minutes at 200 words per minute,
// never less than one minute. Halves round to even, so 500 words read as
// 2 minutes, not 3.
func ReadingTime(wordCount int) int {
	minutes := int(math.RoundToEven(float64(wordCount) / 200))
	if minutes < 1 {
		return 1
	}
	return minutes
}
