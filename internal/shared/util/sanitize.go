package util

import (
	"errors"
	"strings"
)

var errInvalidFileName = errors.New("invalid file name")

// SanitizeFileName makes a user-supplied file name safe to embed in a storage
// key. Path separators are flattened to underscores; names carrying traversal
// sequences or nothing but whitespace are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errInvalidFileName
	}
	clean := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(name))
	if clean == "" {
		return "", errInvalidFileName
	}
	return clean, nil
}
