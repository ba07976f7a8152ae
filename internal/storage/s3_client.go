package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of *s3.Client used by S3Client.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Client binds an SDK client to one bucket and implements S3ClientInterface.
// Each call gets its own timeout.
type S3Client struct {
	api     s3API
	bucket  string
	timeout time.Duration
}

// NewS3Client creates an S3Client. A non-positive timeout disables the per-call deadline.
func NewS3Client(api s3API, bucket string, timeout time.Duration) *S3Client {
	return &S3Client{api: api, bucket: bucket, timeout: timeout}
}

func (c *S3Client) context() (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.timeout)
}

// GetObject downloads the object stored under key.
func (c *S3Client) GetObject(key string) ([]byte, error) {
	ctx, cancel := c.context()
	defer cancel()

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// PutObject uploads data under key with a content type guessed from the extension.
func (c *S3Client) PutObject(key string, data []byte) error {
	ctx, cancel := c.context()
	defer cancel()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}); err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

// ListObjects returns every key under prefix, following continuation tokens.
func (c *S3Client) ListObjects(prefix string) ([]string, error) {
	ctx, cancel := c.context()
	defer cancel()

	pages := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}
