package worker

import (
	"context"
	"net/url"
	"os"
	"path"

	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
)

const videoContentType = "video/mp4"

// Publisher uploads rendered videos and resolves their public URL.
type Publisher struct {
	store  slideshow.ArtifactStore
	prefix string
}

func NewPublisher(store slideshow.ArtifactStore, prefix string) *Publisher {
	return &Publisher{store: store, prefix: prefix}
}

// ObjectKey is <prefix>/<ownerID>/<jobID>.mp4.
func (p *Publisher) ObjectKey(ownerID, jobID string) string {
	return path.Join(p.prefix, ownerID, jobID+".mp4")
}

func (p *Publisher) Publish(ctx context.Context, jobID, ownerID, outputPath string) (string, error) {
	f, err := os.Open(outputPath)
	if err != nil {
		return "", stageErrorf(StagePublish, "open output: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", stageErrorf(StagePublish, "stat output: %w", err)
	}

	key := p.ObjectKey(ownerID, jobID)
	if err := p.store.Upload(ctx, key, f, info.Size(), videoContentType); err != nil {
		return "", stageError(StagePublish, err)
	}

	u, err := p.store.URL(ctx, key)
	if err != nil {
		return "", stageError(StagePublish, err)
	}
	if parsed, err := url.Parse(u); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", stageErrorf(StagePublish, "store returned unusable url %q", u)
	}
	return u, nil
}
