// Package storage provides object storage implementations for prescription files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	prescriptionapp "github.com/pharmacy/backend/internal/application/prescription"
	infraconfig "github.com/pharmacy/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// S3Storage stores prescription files in an S3-compatible bucket. Files are
// written server-side and never exposed publicly; pharmacists read them
// through short-lived presigned URLs.
type S3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	logger        *zap.Logger
}

var _ prescriptionapp.FileStorage = (*S3Storage)(nil)

// NewS3Storage creates storage from configuration. A custom endpoint enables
// S3-compatible backends (MinIO, RustFS, localstack).
func NewS3Storage(cfg infraconfig.StorageConfig, logger *zap.Logger) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("storage credentials are required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
			// S3-compatible backends generally require path-style addressing
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		logger:        logger,
	}, nil
}

// Upload writes the file under the given key
func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Debug("prescription file stored", zap.String("key", key))
	return nil
}

// PresignedURL returns a short-lived download link for the stored file
func (s *S3Storage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, nil
}
