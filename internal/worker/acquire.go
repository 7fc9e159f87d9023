package worker

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
)

const (
	defaultSourceExt     = ".jpg"
	defaultSoundtrackExt = ".mp3"
)

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// Acquirer downloads slide sources into a job's staging area.
type Acquirer struct {
	fetcher slideshow.Fetcher
	staging *Staging
}

func NewAcquirer(fetcher slideshow.Fetcher, staging *Staging) *Acquirer {
	return &Acquirer{fetcher: fetcher, staging: staging}
}

// FetchAll fetches sources one at a time, in order. It stops at the first
// failure and returns local paths in slide order on success.
func (a *Acquirer) FetchAll(ctx context.Context, jobID string, sources []string) ([]string, error) {
	if err := os.MkdirAll(a.staging.SourceDir(jobID), 0o755); err != nil {
		return nil, stageErrorf(StageAcquisition, "create source dir: %w", err)
	}

	paths := make([]string, 0, len(sources))
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, stageError(StageAcquisition, err)
		}
		dst := a.staging.SourcePath(jobID, i+1, sourceExt(src))
		if err := a.fetchOne(ctx, src, dst); err != nil {
			return nil, stageErrorf(StageAcquisition, "slide %d (%s): %w", i+1, src, err)
		}
		paths = append(paths, dst)
	}
	return paths, nil
}

// FetchSoundtrack stages the soundtrack next to the slides so the renderer
// only ever reads local files. An empty src yields an empty path.
func (a *Acquirer) FetchSoundtrack(ctx context.Context, jobID, src string) (string, error) {
	if src == "" {
		return "", nil
	}
	if err := os.MkdirAll(a.staging.SourceDir(jobID), 0o755); err != nil {
		return "", stageErrorf(StageAcquisition, "create source dir: %w", err)
	}
	dst := a.staging.SoundtrackPath(jobID, extOrDefault(src, defaultSoundtrackExt))
	if err := a.fetchOne(ctx, src, dst); err != nil {
		return "", stageErrorf(StageAcquisition, "soundtrack (%s): %w", src, err)
	}
	return dst, nil
}

func (a *Acquirer) fetchOne(ctx context.Context, src, dst string) error {
	rc, err := a.fetcher.Fetch(ctx, src)
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}

// sourceExt picks the file extension from the source path, falling back to
// .jpg when it is missing or unusual.
func sourceExt(src string) string {
	return extOrDefault(src, defaultSourceExt)
}

func extOrDefault(src, def string) string {
	p := src
	if u, err := url.Parse(src); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if !safeExt.MatchString(ext) {
		return def
	}
	return ext
}
