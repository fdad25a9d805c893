package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// s3API is the subset of the S3 client used by the backend.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Backend stores each session key as a small object under a prefix.
type s3Backend struct {
	client s3API
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Backend creates a backend storing session values in bucket.
func NewS3Backend(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Backend, error) {
	logger = logger.With().Str("component", "session-s3-backend").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 session backend initialised")

	return newS3Backend(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Backend(client s3API, bucket, prefix string, logger zerolog.Logger) *s3Backend {
	return &s3Backend{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

func (b *s3Backend) objectKey(key string) string {
	return b.prefix + key
}

func (b *s3Backend) Get(ctx context.Context, key string) (string, bool, error) {
	objectKey := b.objectKey(key)

	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return "", false, nil
		}
		b.logger.Error().
			Err(err).
			Str("bucket", b.bucket).
			Str("key", objectKey).
			Msg("failed to get session object from S3")
		return "", false, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", b.bucket, objectKey, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read S3 object %s: %w", objectKey, err)
	}
	return string(data), true, nil
}

func (b *s3Backend) Set(ctx context.Context, key, value string) error {
	objectKey := b.objectKey(key)

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(objectKey),
		Body:        strings.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("bucket", b.bucket).
			Str("key", objectKey).
			Msg("failed to put session object to S3")
		return fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", b.bucket, objectKey, err)
	}
	return nil
}

func (b *s3Backend) Delete(ctx context.Context, key string) error {
	objectKey := b.objectKey(key)

	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("bucket", b.bucket).
			Str("key", objectKey).
			Msg("failed to delete session object from S3")
		return fmt.Errorf("failed to delete object from S3 (bucket=%s, key=%s): %w", b.bucket, objectKey, err)
	}
	return nil
}
