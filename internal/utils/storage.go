package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/asventura96/testcenter/internal/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService archives generated documents in a MinIO bucket.
type StorageService struct {
	client   *minio.Client
	bucket   string
	endpoint string
}

func NewStorageService(ctx context.Context, cfg *config.MinIOConfig) (*StorageService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.User, cfg.Password, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	return &StorageService{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: fmt.Sprintf("%s://%s", scheme, cfg.Endpoint),
	}, nil
}

// ObjectName builds a collision free object key under folder.
func ObjectName(folder, name string) string {
	name = strings.NewReplacer(" ", "-", "/", "-").Replace(name)
	return fmt.Sprintf("%s/%s-%s.pdf", folder, name, uuid.New().String()[:8])
}

// UploadPDF stores data and returns its public URL.
func (s *StorageService) UploadPDF(ctx context.Context, folder string, data []byte, name string) (string, error) {
	objectName := ObjectName(folder, name)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload PDF: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, objectName), nil
}

// DeleteFile removes the object behind a URL returned by UploadPDF.
func (s *StorageService) DeleteFile(ctx context.Context, fileURL string) error {
	prefix := fmt.Sprintf("%s/%s/", s.endpoint, s.bucket)
	if !strings.HasPrefix(fileURL, prefix) {
		return fmt.Errorf("url %q is not in bucket %s", fileURL, s.bucket)
	}
	return s.client.RemoveObject(ctx, s.bucket, strings.TrimPrefix(fileURL, prefix), minio.RemoveObjectOptions{})
}
