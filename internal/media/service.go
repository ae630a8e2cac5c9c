package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"glownexa-backend/internal/shared/metrics"
	"glownexa-backend/internal/shared/telemetry"
)

// Service validates uploads and hands them to the configured Store.
type Service struct {
	Store Store
}

// Upload validates in, checks the bytes really are an image and hosts it.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Asset, error) {
	if err := Validate(in); err != nil {
		return Asset{}, err
	}

	var sniff [512]byte
	n, err := io.ReadFull(in.Body, sniff[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Asset{}, fmt.Errorf("read sniff: %w", err)
	}
	if n == 0 {
		return Asset{}, &ValidationError{Msg: "No file provided"}
	}
	if detected := http.DetectContentType(sniff[:n]); !strings.HasPrefix(detected, "image/") {
		return Asset{}, &ValidationError{Msg: "File type not supported. Please upload JPG, PNG, or WebP images."}
	}
	in.Body = io.MultiReader(bytes.NewReader(sniff[:n]), in.Body)

	asset, err := s.Store.Upload(ctx, in)
	if err != nil {
		return Asset{}, err
	}
	metrics.IncMediaUploaded()
	telemetry.Info("media.uploaded", map[string]any{
		"user_id":   in.UserID,
		"public_id": asset.PublicID,
		"bytes":     asset.Bytes,
	})
	return asset, nil
}

// Delete removes a hosted image.
func (s *Service) Delete(ctx context.Context, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return &ValidationError{Msg: "publicId is required"}
	}
	return s.Store.Delete(ctx, publicID)
}

// URL renders a delivery URL.
func (s *Service) URL(publicID string, t Transform) string {
	return s.Store.URL(publicID, t)
}
