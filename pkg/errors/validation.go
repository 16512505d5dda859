package errors

import (
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node identifiers accepted from users.
const MaxNodeIDLength = 256

// ValidateNodeID validates a node identifier supplied by a user (CLI flag,
// query parameter). It does not check that the node exists.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidNodeID, "node id cannot contain whitespace: %q", id)
		}
	}

	return nil
}

// SafeFilename turns a node id into something usable as a file name
// component. Characters outside [A-Za-z0-9_.-] become underscores.
func SafeFilename(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := strings.Trim(b.String(), ".")
	if s == "" {
		return "node"
	}
	return s
}
