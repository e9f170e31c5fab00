package pii

import (
	"regexp"
)

const RedactedPlaceholder = "[REDACTED]"

var patterns = []*regexp.Regexp{
	// Email addresses.
	regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	// Phone numbers with separators, 7+ digits.
	regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`),
	// IPv4 addresses.
	regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
}

// Redactor masks personal data in message content before it leaves the
// system. Moderation itself runs on the raw content; only externally
// delivered copies are scrubbed.
type Redactor struct {
	enabled bool
}

// NewRedactor creates a new Redactor.
func NewRedactor(enabled bool) *Redactor {
	return &Redactor{enabled: enabled}
}

// Scrub returns the content with emails, phone numbers and IP addresses
// replaced by a placeholder.
func (r *Redactor) Scrub(content string) string {
	if !r.enabled || content == "" {
		return content
	}
	for _, p := range patterns {
		content = p.ReplaceAllString(content, RedactedPlaceholder)
	}
	return content
}
