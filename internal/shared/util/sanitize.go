package util

import (
	"errors"
	"path"
	"strings"
)

// ErrInvalidFileName is returned for empty names and traversal attempts.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps letters, digits, dot, dash and underscore and
// replaces everything else with an underscore.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "", ErrInvalidFileName
	}
	return out, nil
}

// TrimExtension drops the final extension, so "face.jpg" becomes "face".
func TrimExtension(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
