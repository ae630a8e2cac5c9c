// Package media validates and hosts analysis photos.
package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

const (
	// MaxUploadBytes caps a single image at 10MB.
	MaxUploadBytes = 10 << 20
	// Folder groups every analysis photo on the host.
	Folder = "skin_analysis"
	source = "glownexa_app"
)

// Tags are attached to every hosted image.
var Tags = []string{"skin_analysis", "glownexa"}

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var (
	// ErrValidation marks user-facing upload rejections.
	ErrValidation = errors.New("invalid media")
	// ErrNotFound is returned when deleting an unknown public id.
	ErrNotFound = errors.New("media not found")
)

// ValidationError carries the message shown to the uploader.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is lets errors.Is match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UploadInput is an image about to be hosted.
type UploadInput struct {
	UserID      string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Asset describes a hosted image.
type Asset struct {
	URL          string    `json:"url"`
	PublicID     string    `json:"publicId"`
	Format       string    `json:"format"`
	Bytes        int64     `json:"bytes"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	CreatedAt    time.Time `json:"createdAt"`
	ResourceType string    `json:"resourceType"`
}

// Transform is an optional delivery transformation.
type Transform struct {
	Width   int
	Height  int
	Quality string
	Format  string
	Crop    string
}

// Store hosts images.
type Store interface {
	Upload(ctx context.Context, in UploadInput) (Asset, error)
	Delete(ctx context.Context, publicID string) error
	URL(publicID string, t Transform) string
}

// Validate applies the size and type rules before any bytes are sent upstream.
func Validate(in UploadInput) error {
	if in.Body == nil {
		return &ValidationError{Msg: "No file provided"}
	}
	if in.Size > MaxUploadBytes {
		return &ValidationError{Msg: "File size exceeds 10MB limit"}
	}
	if !AllowedType(in.ContentType) {
		return &ValidationError{Msg: "File type not supported. Please upload JPG, PNG, or WebP images."}
	}
	return nil
}

// AllowedType reports whether contentType is an accepted image type.
func AllowedType(contentType string) bool {
	_, ok := allowedTypes[normalizeType(contentType)]
	return ok
}

// UploadContext renders the context metadata stored alongside an upload.
func UploadContext(now time.Time) map[string]string {
	return map[string]string{
		"upload_date": now.UTC().Format(time.RFC3339),
		"source":      source,
	}
}

func normalizeType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

func extensionFor(contentType string) string {
	return allowedTypes[normalizeType(contentType)]
}
