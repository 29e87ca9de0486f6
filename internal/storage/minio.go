package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sakif/college-board/internal/config"
)

var _ ImageStore = (*MinIOStore)(nil)

// MinIOStore keeps images in one bucket of a MinIO (or any S3-compatible)
// server. Object names look like "clubs/2026/03/<uuid>.png".
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewMinIOStore connects to the server and creates the bucket if it does not
// exist yet.
func NewMinIOStore(ctx context.Context, cfg config.MinIO) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: creating MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: checking bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: creating bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinIOStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicBaseURL(cfg),
		now:       time.Now,
	}, nil
}

func (s *MinIOStore) Put(ctx context.Context, prefix string, img *Image) (Object, error) {
	key := s.objectKey(prefix, img.Extension)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(img.Data), int64(len(img.Data)),
		minio.PutObjectOptions{ContentType: img.ContentType},
	)
	if err != nil {
		return Object{}, fmt.Errorf("storage: uploading %s: %w", key, err)
	}

	return Object{Key: key, URL: s.publicURL + "/" + s.bucket + "/" + key}, nil
}

// Delete removes the object. Removing a key that does not exist succeeds.
func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: deleting %s: %w", key, err)
	}
	return nil
}

func (s *MinIOStore) objectKey(prefix, ext string) string {
	now := s.now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%s%s", prefix, now.Year(), now.Month(), uuid.NewString(), ext)
}

func publicBaseURL(cfg config.MinIO) string {
	if cfg.PublicURL != "" {
		return strings.TrimSuffix(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}
