package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ticketflow/ticketflow/internal/config"
)

// S3Storage implements ObjectStorage against any S3-compatible endpoint via
// the minio SDK.
type S3Storage struct {
	client *minio.Client
	bucket string
}

// NewS3Storage creates a client from config.
func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &S3Storage{client: client, bucket: cfg.Bucket}, nil
}

// Store uploads data under a fresh key derived from the upload time and a
// UUID, keeping the original extension.
func (s *S3Storage) Store(ctx context.Context, data []byte, fileName, mimeType string, uploaderID int64) (StoredObject, error) {
	key := objectKey(fileName)

	opts := minio.PutObjectOptions{
		ContentType: mimeType,
		UserMetadata: map[string]string{
			"original-name": fileName,
			"uploaded-by":   fmt.Sprintf("%d", uploaderID),
		},
	}
	if opts.ContentType == "" {
		opts.ContentType = "application/octet-stream"
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return StoredObject{}, err
	}

	return StoredObject{
		Key:       key,
		Location:  s.client.EndpointURL().JoinPath(s.bucket, key).String(),
		SizeBytes: info.Size,
	}, nil
}

// Delete removes the object behind key.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// SignedURL issues a presigned GET URL with bounded expiry.
func (s *S3Storage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	signed, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}

func objectKey(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("tickets/%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}
