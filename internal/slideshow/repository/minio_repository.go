package repository

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

type minioObjectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

type minioArtifactStore struct {
	client        minioObjectAPI
	bucket        string
	urlExpiry     time.Duration
	publicBaseURL string
}

func NewMinIOArtifactStore(client *minio.Client, bucket string, urlExpiry time.Duration, publicBaseURL string) slideshow.ArtifactStore {
	return &minioArtifactStore{
		client:        client,
		bucket:        bucket,
		urlExpiry:     urlExpiry,
		publicBaseURL: publicBaseURL,
	}
}

func (m *minioArtifactStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return errors.Wrapf(err, "minioArtifactStore.Upload %s", key)
	}
	return nil
}

func (m *minioArtifactStore) URL(ctx context.Context, key string) (string, error) {
	if m.publicBaseURL != "" {
		return joinPublicURL(m.publicBaseURL, key), nil
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.urlExpiry, url.Values{})
	if err != nil {
		return "", errors.Wrapf(err, "minioArtifactStore.URL %s", key)
	}
	return u.String(), nil
}
