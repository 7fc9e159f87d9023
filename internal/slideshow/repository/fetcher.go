package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type s3ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type sourceFetcher struct {
	httpClient *http.Client
	s3Client   s3ObjectGetter
	allowLocal bool
}

// NewSourceFetcher resolves http(s) and s3://bucket/key sources. file:// and
// plain local paths are opened only when allowLocal is set. s3Client may be
// nil, in which case s3 sources are rejected.
func NewSourceFetcher(timeout time.Duration, s3Client *s3.Client, allowLocal bool) slideshow.Fetcher {
	f := &sourceFetcher{
		httpClient: &http.Client{Timeout: timeout},
		allowLocal: allowLocal,
	}
	if s3Client != nil {
		f.s3Client = s3Client
	}
	return f
}

func (f *sourceFetcher) Fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, errors.Wrapf(err, "sourceFetcher.Fetch parse %q", source)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, source)
	case "s3":
		return f.fetchS3(ctx, u)
	case "file":
		if !f.allowLocal {
			return nil, fmt.Errorf("%w: %q", models.ErrLocalSource, source)
		}
		return f.openFile(u.Path)
	case "":
		if !f.allowLocal {
			return nil, fmt.Errorf("%w: %q", models.ErrLocalSource, source)
		}
		return f.openFile(source)
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

func (f *sourceFetcher) fetchHTTP(ctx context.Context, source string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrap(err, "sourceFetcher.fetchHTTP.NewRequest")
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "sourceFetcher.fetchHTTP %s", source)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", source, resp.StatusCode)
	}
	return resp.Body, nil
}

func (f *sourceFetcher) fetchS3(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	if f.s3Client == nil {
		return nil, fmt.Errorf("s3 sources are not configured")
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 source %q", u.String())
	}
	res, err := f.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "sourceFetcher.fetchS3 %s/%s", bucket, key)
	}
	return res.Body, nil
}

func (f *sourceFetcher) openFile(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "sourceFetcher.openFile")
	}
	return file, nil
}
