package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// ObjectStore saves, removes and addresses binary objects by key.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (sizeBytes int64, err error)
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
}

// CleanKey normalizes key to a relative slash path.
func CleanKey(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(key))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// JoinURL joins a base URL and key with a single slash.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
