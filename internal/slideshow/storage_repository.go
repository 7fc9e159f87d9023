package slideshow

import (
	"context"
	"io"
)

// ArtifactStore persists rendered videos and hands out retrievable URLs.
type ArtifactStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

// Fetcher opens a byte stream for a source URI.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (io.ReadCloser, error)
}
