package errors

import (
	"slices"
	"strings"
	"unicode"
)

// maxKeyLength bounds tree and session keys accepted from outside.
const maxKeyLength = 128

// ValidateKey validates a tree or session key for safety.
// Keys end up in file names and Redis/Mongo keys, so the rules are
// conservative:
//   - No empty keys
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "key contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateMaxDepth validates a depth cutoff. Negative values other than -1
// (unlimited) are rejected.
func ValidateMaxDepth(depth int) error {
	if depth < -1 {
		return New(ErrCodeInvalidDepth, "max depth must be >= 0 (or -1 for unlimited), got %d", depth)
	}
	return nil
}

// ValidateOneOf checks that value is one of the allowed values, returning an
// error with the given code otherwise.
func ValidateOneOf(code Code, kind, value string, allowed map[string]bool) error {
	if allowed[value] {
		return nil
	}
	names := make([]string, 0, len(allowed))
	for k := range allowed {
		names = append(names, k)
	}
	slices.Sort(names)
	return New(code, "invalid %s: %s (must be one of %s)", kind, value, strings.Join(names, ", "))
}
