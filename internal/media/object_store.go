package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/google/uuid"

	"glownexa-backend/internal/shared/storage/object"
	"glownexa-backend/internal/shared/util"
)

// ObjectBackedStore hosts images on a plain object store (S3 or disk).
// Transformations are not supported; URL ignores them.
type ObjectBackedStore struct {
	Objects object.ObjectStore
	now     func() time.Time
	newID   func() string
}

// NewObjectBackedStore wraps objects as a media Store.
func NewObjectBackedStore(objects object.ObjectStore) *ObjectBackedStore {
	return &ObjectBackedStore{Objects: objects, now: time.Now, newID: uuid.NewString}
}

// Upload stores the image under skin_analysis/<user hash>/<id>_<name>.
func (s *ObjectBackedStore) Upload(ctx context.Context, in UploadInput) (Asset, error) {
	name, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		name = "image"
	}
	ext := extensionFor(in.ContentType)
	key := fmt.Sprintf("%s/%s/%s_%s.%s", Folder, util.HashUserKey(in.UserID), s.newID(), util.TrimExtension(name), ext)

	data, err := io.ReadAll(io.LimitReader(in.Body, MaxUploadBytes+1))
	if err != nil {
		return Asset{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return Asset{}, &ValidationError{Msg: "File size exceeds 10MB limit"}
	}

	n, err := s.Objects.Put(ctx, key, normalizeType(in.ContentType), bytes.NewReader(data))
	if err != nil {
		return Asset{}, fmt.Errorf("store image: %w", err)
	}
	asset := Asset{
		URL:          s.Objects.URL(key),
		PublicID:     key,
		Format:       ext,
		Bytes:        n,
		CreatedAt:    s.now().UTC(),
		ResourceType: "image",
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		asset.Width, asset.Height = cfg.Width, cfg.Height
	}
	return asset, nil
}

// Delete removes the stored object.
func (s *ObjectBackedStore) Delete(ctx context.Context, publicID string) error {
	return s.Objects.Delete(ctx, publicID)
}

// URL returns the object's public address.
func (s *ObjectBackedStore) URL(publicID string, _ Transform) string {
	return s.Objects.URL(publicID)
}

var _ Store = (*ObjectBackedStore)(nil)
