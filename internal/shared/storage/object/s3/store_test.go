package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "skin_analysis/face.jpg", want: "skin_analysis/face.jpg"},
		{name: "simple prefix", prefix: "root", key: "skin_analysis/face.jpg", want: "root/skin_analysis/face.jpg"},
		{name: "prefix trailing slash", prefix: "root/", key: "skin_analysis/face.jpg", want: "root/skin_analysis/face.jpg"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/skin_analysis/face.jpg", want: "root/skin_analysis/face.jpg"},
		{name: "nested prefix", prefix: "root/sub", key: "skin_analysis/face.jpg", want: "root/sub/skin_analysis/face.jpg"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    string
	deleted string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestStorePutDeleteURL(t *testing.T) {
	fake := &fakeS3{}
	s := NewWithClient(fake, Options{Bucket: "glownexa-media", Prefix: "prod", Region: "eu-west-1"})

	n, err := s.Put(context.Background(), "skin_analysis/u1/face.jpg", "image/jpeg", strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != 3 || fake.body != "abc" {
		t.Fatalf("unexpected size/body: %d %q", n, fake.body)
	}
	if got := aws.ToString(fake.put.Key); got != "prod/skin_analysis/u1/face.jpg" {
		t.Fatalf("unexpected key %q", got)
	}
	if fake.put.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 SSE, got %q", fake.put.ServerSideEncryption)
	}
	if got := s.URL("skin_analysis/u1/face.jpg"); got != "https://glownexa-media.s3.eu-west-1.amazonaws.com/prod/skin_analysis/u1/face.jpg" {
		t.Fatalf("unexpected URL %q", got)
	}
	if err := s.Delete(context.Background(), "skin_analysis/u1/face.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if fake.deleted != "prod/skin_analysis/u1/face.jpg" {
		t.Fatalf("unexpected deleted key %q", fake.deleted)
	}
}
