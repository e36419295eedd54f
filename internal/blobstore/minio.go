package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/joseph-ayodele/wedding-ledger/internal/common"
)

type Minio struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

func NewMinio(cfg common.BlobConfig, logger *slog.Logger) (*Minio, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &Minio{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.logger.Info("blob.bucket.created", "bucket", s.bucket)
	}
	return nil
}

func (s *Minio) Put(ctx context.Context, coupleID uuid.UUID, filename string, data []byte, contentType string) (string, error) {
	key := ObjectPath(coupleID, filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	s.logger.Info("blob.put", "backend", "minio", "bucket", s.bucket, "key", key, "bytes", len(data))
	return key, nil
}

func (s *Minio) Get(ctx context.Context, objectPath string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", objectPath, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", objectPath, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", objectPath, err)
	}
	return data, nil
}
