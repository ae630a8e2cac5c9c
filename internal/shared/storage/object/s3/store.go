package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"glownexa-backend/internal/shared/storage/object"
)

// API is the subset of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store implements ObjectStore using Amazon S3.
type Store struct {
	client    API
	bucket    string
	prefix    string
	kmsKeyID  string
	publicURL string
}

// Options configures a Store.
type Options struct {
	Region   string
	Bucket   string
	Prefix   string
	KMSKeyID string
	// PublicBaseURL is the CDN or bucket website origin objects are read from.
	PublicBaseURL string
}

// New creates an S3-backed object store using the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg), opts), nil
}

// NewWithClient builds a Store around an existing client.
func NewWithClient(client API, opts Options) *Store {
	publicURL := strings.TrimSpace(opts.PublicBaseURL)
	if publicURL == "" {
		region := opts.Region
		if region == "" {
			region = "us-east-1"
		}
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, region)
	}
	return &Store{
		client:    client,
		bucket:    opts.Bucket,
		prefix:    normalizePrefix(opts.Prefix),
		kmsKeyID:  strings.TrimSpace(opts.KMSKeyID),
		publicURL: publicURL,
	}
}

// Put uploads the reader contents to key.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	clean, err := object.CleanKey(key)
	if err != nil {
		return 0, err
	}
	objectKey := applyPrefix(s.prefix, clean)
	counter := &countingReader{r: r}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        counter,
		ContentType: aws.String(contentType),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return counter.n, nil
}

// Delete removes key from the bucket.
func (s *Store) Delete(ctx context.Context, key string) error {
	clean, err := object.CleanKey(key)
	if err != nil {
		return err
	}
	objectKey := applyPrefix(s.prefix, clean)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return nil
}

// URL returns the public address of key.
func (s *Store) URL(key string) string {
	clean, err := object.CleanKey(key)
	if err != nil {
		return ""
	}
	return object.JoinURL(s.publicURL, applyPrefix(s.prefix, clean))
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ object.ObjectStore = (*Store)(nil)
