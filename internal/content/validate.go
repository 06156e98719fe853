package content

import (
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
)

// Validation limits for document fields.
const (
	maxTitleLen    = 500
	maxBodyLen     = 100_000
	maxMetaDescLen = 500
	maxKeywordsLen = 500
)

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return &ValidationError{Field: "title", Reason: "too long (max 500 characters)"}
	}
	return nil
}

func validateBody(body string) error {
	if body == "" {
		return &ValidationError{Field: "body", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return &ValidationError{Field: "body", Reason: "too long (max 100,000 characters)"}
	}
	return nil
}

func validateMetaDescription(desc string) error {
	if utf8.RuneCountInString(desc) > maxMetaDescLen {
		return &ValidationError{Field: "meta_description", Reason: "too long (max 500 characters)"}
	}
	return nil
}

func validateMetaKeywords(kw string) error {
	if utf8.RuneCountInString(kw) > maxKeywordsLen {
		return &ValidationError{Field: "meta_keywords", Reason: "too long (max 500 characters)"}
	}
	return nil
}

func validateStatus(status models.DocumentStatus) error {
	if !status.Valid() {
		return &ValidationError{Field: "status", Reason: "must be draft, published, scheduled, or archived"}
	}
	return nil
}

// ValidateDraft checks a buffered draft against the same bounds enforced on
// committed updates, so a draft buffer never holds content that every
// persist attempt would reject.
func ValidateDraft(title, body string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	return validateBody(body)
}

// countKeywords counts non-empty entries in a comma-separated keyword list.
func countKeywords(kw *string) int {
	if kw == nil {
		return 0
	}
	count := 0
	for _, part := range strings.Split(*kw, ",") {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}
