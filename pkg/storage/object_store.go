package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// GuideArchive stores generated guide markdown and hands out shareable links.
type GuideArchive interface {
	ArchiveGuide(ctx context.Context, inquiryID, content string) (string, error)
}

// MinioArchive implements GuideArchive for MinIO/S3 compatible storage.
type MinioArchive struct {
	client  *minio.Client
	bucket  string
	linkTTL time.Duration
}

// NewMinioArchive connects to MinIO and ensures the bucket exists.
func NewMinioArchive(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioArchive, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := mc.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioArchive{client: mc, bucket: bucket, linkTTL: 24 * time.Hour}, nil
}

// ArchiveGuide uploads the guide markdown keyed by inquiry ID and returns a
// presigned GET URL valid for the archive's link TTL.
func (a *MinioArchive) ArchiveGuide(ctx context.Context, inquiryID, content string) (string, error) {
	key := "guides/" + inquiryID + ".md"
	_, err := a.client.PutObject(ctx, a.bucket, key, strings.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/markdown"})
	if err != nil {
		return "", fmt.Errorf("archive guide: %w", err)
	}
	url, err := a.client.PresignedGetObject(ctx, a.bucket, key, a.linkTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign guide link: %w", err)
	}
	return url.String(), nil
}
