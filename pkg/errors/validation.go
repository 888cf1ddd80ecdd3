package errors

import (
	"strings"
	"unicode"
)

const maxPathLength = 500

// ValidateDirectory validates the directory a discovery run is rooted at.
//
// The validation rules are intentionally conservative:
//   - Empty, "." and "/" all mean the repository root and are accepted
//   - Maximum length of 500 characters
//   - No control characters or null bytes
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
//
// A leading or trailing "/" is allowed; the fetcher normalizes it away.
func ValidateDirectory(dir string) error {
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}
	if len(dir) > maxPathLength {
		return New(ErrCodeInvalidPath, "directory too long (max %d characters)", maxPathLength)
	}
	if err := checkPathChars(dir); err != nil {
		return err
	}
	for _, part := range strings.Split(dir, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "directory cannot contain path traversal sequences (..)")
		}
	}
	return nil
}

// ValidatePath validates a file path within a repository for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No backslashes (Windows-style paths)
//
// Unlike [ValidateDirectory], ".." segments are accepted: requirement files
// legitimately include siblings (-r ../base.txt). Callers normalize the path
// against its including file before fetching.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	if err := checkPathChars(path); err != nil {
		return err
	}
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	return nil
}

func checkPathChars(path string) error {
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http, https or redis).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range []string{"http://", "https://", "redis://", "rediss://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use http, https, redis or rediss scheme")
}
