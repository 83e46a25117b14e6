package util

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrInvalidFileName is returned when an upload name cannot be made safe.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName strips directories and path separators from an uploaded
// file name and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "\\", "/")
	s = filepath.Base(s)
	if s == "." || s == "/" {
		s = ""
	}
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
