package service

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	subjectUnsafeChars = regexp.MustCompile(`[^\w\s\-.,!?()&@#$%]`)
	subjectLongWords   = regexp.MustCompile(`(?i)\b[a-z]{8,}\b`)
	subjectWhitespace  = regexp.MustCompile(`\s+`)
)

// SanitizeSubject normalizes a raw subject line: trims, strips characters
// outside the safe punctuation set, drops alphabetic words of 8+ letters,
// and collapses runs of whitespace.
func SanitizeSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	subject = subjectUnsafeChars.ReplaceAllString(subject, "")
	subject = subjectLongWords.ReplaceAllString(subject, "")
	subject = subjectWhitespace.ReplaceAllString(subject, " ")
	return strings.TrimSpace(subject)
}

// StoredSubject builds the persisted subject: the sanitized text, prefixed
// with "[category - subcategory]" when both are present.
func StoredSubject(subject string, category, subcategory *string) string {
	clean := SanitizeSubject(subject)
	if category != nil && *category != "" && subcategory != nil && *subcategory != "" {
		return fmt.Sprintf("[%s - %s] %s", *category, *subcategory, clean)
	}
	return clean
}

// EditableSubject reverses the prefix for editing: everything up to and
// including the first "]" is stripped.
func EditableSubject(subject string) string {
	if strings.HasPrefix(subject, "[") {
		if idx := strings.Index(subject, "]"); idx != -1 {
			return strings.TrimSpace(subject[idx+1:])
		}
	}
	return subject
}
