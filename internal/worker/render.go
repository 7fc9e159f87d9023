package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/amankumarsingh77/slideshow-encoder/pkg/logger"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/utils"
	"golang.org/x/sync/semaphore"
)

type RenderOptions struct {
	FFmpegPath       string
	Timeout          time.Duration
	MaxConcurrent    int
	MaxCPUUsage      float64
	CPUCheckInterval time.Duration
}

// RenderOutcome reports how one render went. It is a value, never a panic.
type RenderOutcome struct {
	Success    bool
	OutputPath string
	ExitCode   int
	Stderr     string
	Err        error
}

// Renderer runs the encoder as a child process. Concurrent renders across
// jobs are capped by a weighted semaphore, and an optional CPU gate delays
// launches while the host is busy.
type Renderer struct {
	runner   CommandRunner
	opts     RenderOptions
	sem      *semaphore.Weighted
	cpuCheck func() (bool, float64)
	logger   logger.Logger
}

func NewRenderer(runner CommandRunner, opts RenderOptions, logger logger.Logger) *Renderer {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.CPUCheckInterval <= 0 {
		opts.CPUCheckInterval = 2 * time.Second
	}
	r := &Renderer{
		runner: runner,
		opts:   opts,
		sem:    semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		logger: logger,
	}
	if opts.MaxCPUUsage > 0 {
		r.cpuCheck = func() (bool, float64) {
			return utils.CheckCPUUsage(opts.MaxCPUUsage)
		}
	}
	return r
}

func (r *Renderer) Render(ctx context.Context, jobID string, inv *Invocation) RenderOutcome {
	if inv == nil {
		return r.failure(-1, "", stageErrorf(StageRender, "nil invocation"))
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return r.failure(-1, "", stageErrorf(StageRender, "waiting for render slot: %w", err))
	}
	defer r.sem.Release(1)

	if r.cpuCheck != nil {
		if err := utils.WaitForCPU(ctx, r.opts.CPUCheckInterval, r.cpuCheck); err != nil {
			return r.failure(-1, "", stageErrorf(StageRender, "waiting for cpu: %w", err))
		}
	}

	runCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := r.runner.Run(runCtx, r.opts.FFmpegPath, inv.Args...)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %s: %w", r.opts.Timeout, err)
		}
		r.logger.Errorf("render for job %s failed (exit %d): %v, stderr: %s", jobID, res.ExitCode, err, res.Stderr)
		return r.failure(res.ExitCode, res.Stderr, stageError(StageRender, err))
	}
	if _, err := os.Stat(inv.Output); err != nil {
		return r.failure(res.ExitCode, res.Stderr, stageErrorf(StageRender, "renderer produced no output: %w", err))
	}

	r.logger.Infof("render for job %s finished in %s", jobID, time.Since(start).Round(time.Millisecond))
	return RenderOutcome{
		Success:    true,
		OutputPath: inv.Output,
		ExitCode:   res.ExitCode,
		Stderr:     res.Stderr,
	}
}

func (r *Renderer) failure(exitCode int, stderr string, err error) RenderOutcome {
	return RenderOutcome{ExitCode: exitCode, Stderr: stderr, Err: err}
}
