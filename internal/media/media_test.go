package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"glownexa-backend/internal/shared/storage/object/local"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	body := strings.NewReader("x")
	cases := []struct {
		name string
		in   UploadInput
		msg  string
	}{
		{name: "no file", in: UploadInput{ContentType: "image/png"}, msg: "No file provided"},
		{name: "too big", in: UploadInput{Body: body, Size: MaxUploadBytes + 1, ContentType: "image/png"}, msg: "File size exceeds 10MB limit"},
		{name: "gif", in: UploadInput{Body: body, Size: 10, ContentType: "image/gif"}, msg: "File type not supported. Please upload JPG, PNG, or WebP images."},
		{name: "ok jpg alias", in: UploadInput{Body: body, Size: MaxUploadBytes, ContentType: "image/jpg"}},
		{name: "ok webp with params", in: UploadInput{Body: body, Size: 1, ContentType: "image/webp; charset=binary"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.msg == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrValidation) || err.Error() != tc.msg {
				t.Fatalf("expected validation error %q, got %v", tc.msg, err)
			}
		})
	}
}

func TestServiceUploadToLocalStore(t *testing.T) {
	dir := t.TempDir()
	store := NewObjectBackedStore(local.New(dir, "/media"))
	store.newID = func() string { return "fixed" }
	store.now = func() time.Time { return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC) }
	svc := &Service{Store: store}

	data := pngBytes(t, 4, 3)
	asset, err := svc.Upload(context.Background(), UploadInput{
		UserID:      "uid-1",
		FileName:    "my face.png",
		ContentType: "image/png",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(asset.PublicID, "skin_analysis/") || !strings.HasSuffix(asset.PublicID, "/fixed_my_face.png") {
		t.Fatalf("unexpected public id %q", asset.PublicID)
	}
	if asset.URL != "/media/"+asset.PublicID {
		t.Fatalf("unexpected url %q", asset.URL)
	}
	if asset.Width != 4 || asset.Height != 3 || asset.Bytes != int64(len(data)) || asset.Format != "png" {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if err := svc.Delete(context.Background(), asset.PublicID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestServiceRejectsNonImageBytes(t *testing.T) {
	svc := &Service{Store: NewObjectBackedStore(local.New(t.TempDir(), "/media"))}
	body := []byte("%PDF-1.7 definitely not an image")
	_, err := svc.Upload(context.Background(), UploadInput{
		UserID:      "uid-1",
		FileName:    "face.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
