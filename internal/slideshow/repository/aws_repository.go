package repository

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type awsArtifactStore struct {
	uploader      s3Uploader
	preSignClient s3Presigner
	bucket        string
	urlExpiry     time.Duration
	publicBaseURL string
}

// NewAwsArtifactStore streams uploads through the multipart manager. URLs are
// presigned GETs unless publicBaseURL is set.
func NewAwsArtifactStore(client *s3.Client, preSignClient *s3.PresignClient, bucket string, urlExpiry time.Duration, publicBaseURL string) slideshow.ArtifactStore {
	return &awsArtifactStore{
		uploader:      manager.NewUploader(client),
		preSignClient: preSignClient,
		bucket:        bucket,
		urlExpiry:     urlExpiry,
		publicBaseURL: publicBaseURL,
	}
}

func (a *awsArtifactStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Wrapf(err, "awsArtifactStore.Upload %s", key)
	}
	return nil
}

func (a *awsArtifactStore) URL(ctx context.Context, key string) (string, error) {
	if a.publicBaseURL != "" {
		return joinPublicURL(a.publicBaseURL, key), nil
	}
	req, err := a.preSignClient.PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(a.urlExpiry),
	)
	if err != nil {
		return "", errors.Wrapf(err, "awsArtifactStore.URL %s", key)
	}
	return req.URL, nil
}

func joinPublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
