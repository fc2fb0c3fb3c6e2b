package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/staysense/predictor/internal/config"
)

// MinioBucket implements Bucket against any S3-compatible endpoint.
type MinioBucket struct {
	client        *minio.Client
	bucket        string
	endpoint      string
	publicBaseURL string
	useSSL        bool
}

// NewMinioBucket creates a client for the configured bucket.
func NewMinioBucket(cfg config.StorageConfig) (*MinioBucket, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &MinioBucket{
		client:        client,
		bucket:        cfg.Bucket,
		endpoint:      cfg.Endpoint,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		useSSL:        cfg.UseSSL,
	}, nil
}

func (b *MinioBucket) Ready(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnreachable, err)
	}
	if !exists {
		return fmt.Errorf("%w: bucket %q does not exist", ErrStorageUnreachable, b.bucket)
	}
	return nil
}

func (b *MinioBucket) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	_, err := b.client.PutObject(ctx, b.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", ErrUploadFailed, objectName, err)
	}
	return b.publicURL(objectName), nil
}

// publicURL assumes a public-read bucket policy, matching the original
// deployment where every uploaded object was made public.
func (b *MinioBucket) publicURL(objectName string) string {
	if b.publicBaseURL != "" {
		return b.publicBaseURL + "/" + objectName
	}
	scheme := "http"
	if b.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, b.endpoint, b.bucket, objectName)
}
