// Package match implements the filename matching engine: normalization,
// exclusion-suffix filtering, and best-candidate selection.
package match

import (
	"path/filepath"
	"regexp"
	"strings"
)

// counterSuffix matches a trailing duplicate counter like " (2)", the form
// storage providers append when the same name is uploaded twice.
var counterSuffix = regexp.MustCompile(`\s*\(\d+\)\s*$`)

// Normalize canonicalizes a filename (or stem) for comparison: it trims
// surrounding whitespace, strips one trailing "(n)" counter, and lowercases.
// The normalized form is used only for comparison, never for display.
func Normalize(name string) string {
	name = counterSuffix.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.ToLower(strings.TrimSpace(name))
}

// Stem returns the filename without its extension.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
