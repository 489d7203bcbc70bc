// Package text provides utilities for cleaning free-form feed text before
// it is persisted or rendered. Feed titles and descriptions arrive with
// embedded markup and arbitrary characters; these functions reduce them to
// a bounded, display-safe form.
package text

import (
	"regexp"
	"strings"
)

const (
	// MaxSanitizedLength caps any sanitized field before further truncation.
	MaxSanitizedLength = 2000

	// MaxSummaryLength is the display cap for item summaries.
	MaxSummaryLength = 200
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	unsafePattern = regexp.MustCompile(`[^\w\s.,!?;:\-]`)
	multiSpace    = regexp.MustCompile(`\s+`)
)

// Sanitize strips HTML-like tags and characters outside the safe allow-list
// (word characters, whitespace and basic punctuation), collapses runs of
// whitespace, trims, and truncates to MaxSanitizedLength runes.
//
// Examples:
//
//	Sanitize("<b>Stripe</b> launches")   // "Stripe launches"
//	Sanitize("Q3 earnings: up 12%!")     // "Q3 earnings: up 12!"
//	Sanitize("  spaced   out  ")         // "spaced out"
func Sanitize(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = unsafePattern.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return truncateRunes(s, MaxSanitizedLength)
}

// Summarize sanitizes a description and truncates it to MaxSummaryLength
// runes, appending an ellipsis when content was cut.
func Summarize(s string) string {
	s = Sanitize(s)
	runes := []rune(s)
	if len(runes) <= MaxSummaryLength {
		return s
	}
	return strings.TrimSpace(string(runes[:MaxSummaryLength])) + "..."
}

// truncateRunes hard-truncates to n runes. Rune-based so multi-byte
// characters are never split mid-sequence.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
