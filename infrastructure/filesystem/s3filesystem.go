package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured is returned when no bucket is set. Upload is the only
// caller; it maps this to a 503.
var ErrNotConfigured = errors.New("file storage is not configured")

// Storage is the whole contract the core needs from the blob store: put
// bytes under a unique key, get back a durable public URL.
type Storage interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
}

type S3Storage struct {
	Bucket string
	Region string
}

func NewS3Storage(bucket, region string) *S3Storage {
	return &S3Storage{Bucket: bucket, Region: region}
}

func (s *S3Storage) Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	if s.Bucket == "" {
		return "", ErrNotConfigured
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(s.Region))
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s to bucket %s: %w", key, s.Bucket, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key), nil
}
