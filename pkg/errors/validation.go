package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateNodeID validates a graph node identifier for safety and correctness.
// Node ids appear in URL paths and file names of rendered output, so the
// rules reject anything that could be used for path traversal or injection:
//   - No empty ids
//   - No control characters or null bytes
//   - No path traversal sequences (..) or backslashes
//   - Maximum length of 512 characters
//
// Slashes are allowed because repository ids are conventionally "owner/name".
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 512 {
		return New(ErrCodeInvalidInput, "node id too long (max 512 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "node id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// roundLabelRegex matches funding round labels such as "SCF-38" or "2025Q3".
var roundLabelRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// ValidateRoundLabel validates an optional snapshot round label.
// An empty label is valid (snapshots are not required to be round-labeled).
func ValidateRoundLabel(label string) error {
	if label == "" {
		return nil
	}
	if !roundLabelRegex.MatchString(label) {
		return New(ErrCodeInvalidInput, "invalid round label: %q", label)
	}
	return nil
}
