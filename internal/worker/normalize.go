package worker

import (
	"context"
	"os"
	"strconv"
)

type NormalizeOptions struct {
	MogrifyPath string
	Width       int
	Height      int
	Background  string
}

// Normalizer resizes and pads every staged image to one canvas with a single
// mogrify batch.
type Normalizer struct {
	runner  CommandRunner
	staging *Staging
	opts    NormalizeOptions
}

func NewNormalizer(runner CommandRunner, staging *Staging, opts NormalizeOptions) *Normalizer {
	if opts.MogrifyPath == "" {
		opts.MogrifyPath = "mogrify"
	}
	return &Normalizer{runner: runner, staging: staging, opts: opts}
}

func (n *Normalizer) Args(outDir string, inputs []string) []string {
	size := strconv.Itoa(n.opts.Width) + "x" + strconv.Itoa(n.opts.Height)
	args := []string{
		"-path", outDir,
		"-format", "jpg",
		"-auto-orient",
		"-resize", size,
		"-background", n.opts.Background,
		"-gravity", "center",
		"-extent", size,
	}
	return append(args, inputs...)
}

// Normalize writes normalized/<i>.jpg for every input and returns those paths
// in slide order.
func (n *Normalizer) Normalize(ctx context.Context, jobID string, inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, stageErrorf(StageNormalization, "no images to normalize")
	}
	outDir := n.staging.NormalizedDir(jobID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, stageErrorf(StageNormalization, "create normalized dir: %w", err)
	}

	res, err := n.runner.Run(ctx, n.opts.MogrifyPath, n.Args(outDir, inputs)...)
	if err != nil {
		return nil, stageErrorf(StageNormalization, "mogrify failed: %v, stderr: %s", err, res.Stderr)
	}

	outputs := make([]string, len(inputs))
	for i := range inputs {
		p := n.staging.NormalizedPath(jobID, i+1)
		if _, err := os.Stat(p); err != nil {
			return nil, stageErrorf(StageNormalization, "missing normalized image for slide %d: %w", i+1, err)
		}
		outputs[i] = p
	}
	return outputs, nil
}
