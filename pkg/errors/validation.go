package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds entity identifiers coming from files or the CLI.
const maxIDLength = 256

// ValidateID validates an entity identifier read from a graph file or
// typed by the user.
//
// The rules are conservative:
//   - No empty identifiers
//   - No control characters
//   - No '#' (reserved for derived IDs such as corner replay keys)
//   - Maximum length of 256 bytes
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "identifier cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "identifier too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "identifier contains invalid control characters")
		}
	}
	if strings.Contains(id, "#") {
		return New(ErrCodeInvalidID, "identifier contains reserved character %q", "#")
	}
	return nil
}

// ValidatePath validates a user supplied file path for the CLI.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "path too long (max 4096 characters)")
	}
	for _, r := range path {
		if r == 0 || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}
	return nil
}
