package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stackscout/internal/common"
)

// S3Archive stores exported reports in an S3-compatible bucket
type S3Archive struct {
	client   *minio.Client
	bucket   string
	region   string
	logger   arbor.ILogger
	initOnce sync.Once
	initErr  error
}

// NewS3Archive validates the configuration and creates the client. The
// bucket is created lazily on the first upload.
func NewS3Archive(config common.ArchiveConfig, logger arbor.ILogger) (*S3Archive, error) {
	endpoint := strings.TrimSpace(config.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("archive endpoint is required")
	}
	access := strings.TrimSpace(config.AccessKey)
	secret := strings.TrimSpace(config.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("archive access key and secret key are required")
	}
	bucket := strings.TrimSpace(config.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	region := strings.TrimSpace(config.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: config.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive client: %w", err)
	}

	return &S3Archive{
		client: client,
		bucket: bucket,
		region: region,
		logger: logger,
	}, nil
}

func (a *S3Archive) ensureBucket(ctx context.Context) error {
	a.initOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.initErr = err
			return
		}
		if exists {
			return
		}
		a.initErr = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region})
	})
	return a.initErr
}

// Put uploads content under key and returns a presigned download URL valid for 24 hours
func (a *S3Archive) Put(ctx context.Context, key, contentType string, content []byte) (string, error) {
	key = ObjectKey(key)
	if key == "" {
		return "", fmt.Errorf("archive key is required")
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("failed to prepare archive bucket %s: %w", a.bucket, err)
	}

	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	u, err := a.client.PresignedGetObject(ctx, a.bucket, key, 24*time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}

	a.logger.Info().
		Str("bucket", a.bucket).
		Str("key", key).
		Int64("size", info.Size).
		Msg("Report archived")
	return u.String(), nil
}

// ObjectKey normalises a key: no leading slash, no dot segments
func ObjectKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	cleaned := path.Clean("/" + key)
	return strings.TrimPrefix(cleaned, "/")
}
