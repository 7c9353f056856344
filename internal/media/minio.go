package media

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreConfig locates the evidence bucket.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioPipeline implements Pipeline against a MinIO/S3 bucket,
// delegating compression to an embedded compressor.
type MinioPipeline struct {
	JPEGCompressor
	client *minio.Client
	bucket string
}

func NewMinioPipeline(cfg ObjectStoreConfig) (*MinioPipeline, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store client: %w", err)
	}
	return &MinioPipeline{client: client, bucket: cfg.Bucket}, nil
}

func (p *MinioPipeline) Upload(ctx context.Context, localPath, objectKey string) (string, error) {
	_, err := p.client.FPutObject(ctx, p.bucket, objectKey, localPath, minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}
	return fmt.Sprintf("%s/%s/%s", p.client.EndpointURL(), p.bucket, objectKey), nil
}

func (p *MinioPipeline) Delete(ctx context.Context, objectKey string) error {
	if err := p.client.RemoveObject(ctx, p.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", objectKey, err)
	}
	return nil
}
