package errors

import (
	"strings"
	"unicode"
)

// maxNodeIDLength bounds ids accepted from query strings and stored documents.
const maxNodeIDLength = 256

// ValidateNodeID validates a content node id.
//
// Ids double as file slugs for the mdoc source and as URL parameters for
// the HTTP API, so the rules are conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Maximum length of 256 bytes
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}
	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxNodeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidNodeID, "node id contains whitespace or control characters: %q", id)
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidatePath validates a relative file path inside a content directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates an embeddable URL string.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
