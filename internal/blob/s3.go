package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultURLExpiry is how long presigned download URLs stay valid.
const DefaultURLExpiry = 7 * 24 * time.Hour

// S3Config configures the S3 store. Endpoint is only set for S3 compatible
// services such as MinIO.
type S3Config struct {
	Region    string
	Bucket    string
	KeyPrefix string
	Endpoint  string
	AccessID  string
	AccessKey string
	URLExpiry time.Duration
}

// S3 keeps blobs in a bucket and hands out presigned GET URLs.
type S3 struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	expiry  time.Duration
}

var _ Store = (*S3)(nil)

// NewS3 returns an S3 store. Static credentials are used when given,
// otherwise the default AWS chain.
func NewS3(ctx context.Context, c S3Config) (*S3, error) {
	if c.Bucket == "" {
		return nil, errors.New("S3 bucket must not be empty")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessID, c.AccessKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.EndpointResolver = s3.EndpointResolverFromURL(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	expiry := c.URLExpiry
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	slog.Debug("S3 blob store enabled", "bucket", c.Bucket, "prefix", c.KeyPrefix)
	return &S3{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  c.Bucket,
		prefix:  c.KeyPrefix,
		expiry:  expiry,
	}, nil
}

func (s *S3) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	slog.Info("blob stored", "bucket", s.bucket, "key", s.prefix+key, "bytes", len(data))
	return s.URL(ctx, key)
}

// URL returns a presigned GET URL for key.
func (s *S3) URL(ctx context.Context, key string) (string, error) {
	resp, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", key, err)
	}
	return resp.URL, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}
