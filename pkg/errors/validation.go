package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// maxItemIDLength bounds identifiers accepted from untrusted callers.
const maxItemIDLength = 128

// itemIDRegex matches the identifiers used by recipe databases
// ("iron-plate", "petroleum_gas", "mod:steel-chest").
var itemIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateItemID validates an item identifier received from a user or an
// HTTP request before it is used as a database key or a file name.
//
// Identifiers loaded from a trusted recipe database are not passed through
// this check; only selections coming from outside are.
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItemID, "item ID cannot be empty")
	}

	if len(id) > maxItemIDLength {
		return New(ErrCodeInvalidItemID, "item ID too long (max %d characters)", maxItemIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidItemID, "item ID contains invalid control characters")
		}
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidItemID, "item ID cannot contain path traversal sequences (..)")
	}

	if !itemIDRegex.MatchString(id) {
		return New(ErrCodeInvalidItemID, "invalid item ID: %q", id)
	}

	return nil
}

// supportedDatabaseExts lists the recipe database file extensions the
// loaders understand.
var supportedDatabaseExts = map[string]bool{
	".json": true,
	".toml": true,
	".yaml": true,
	".yml":  true,
}

// ValidateDatabasePath checks that path names a recipe database file in a
// supported format. It does not touch the filesystem.
func ValidateDatabasePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "recipe database path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedDatabaseExts[ext] {
		return New(ErrCodeInvalidFormat, "unsupported recipe database format %q (must be .json, .toml, .yaml or .yml)", ext)
	}

	return nil
}
