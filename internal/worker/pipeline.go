package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/logger"
)

// Pipeline drives one job through acquisition, normalization, command build,
// render and publish, then removes staging and records the terminal status.
// The Job Store is its only output.
type Pipeline struct {
	baseCtx    context.Context
	store      slideshow.JobStore
	acquirer   *Acquirer
	normalizer *Normalizer
	renderer   *Renderer
	publisher  *Publisher
	staging    *Staging
	encode     EncodeOptions
	logger     logger.Logger
	wg         sync.WaitGroup
}

type PipelineDeps struct {
	Store      slideshow.JobStore
	Acquirer   *Acquirer
	Normalizer *Normalizer
	Renderer   *Renderer
	Publisher  *Publisher
	Staging    *Staging
	Encode     EncodeOptions
	Logger     logger.Logger
}

// NewPipeline binds launched jobs to ctx, the service lifetime, so request
// cancellation never reaches a running job.
func NewPipeline(ctx context.Context, deps PipelineDeps) *Pipeline {
	return &Pipeline{
		baseCtx:    ctx,
		store:      deps.Store,
		acquirer:   deps.Acquirer,
		normalizer: deps.Normalizer,
		renderer:   deps.Renderer,
		publisher:  deps.Publisher,
		staging:    deps.Staging,
		encode:     deps.Encode,
		logger:     deps.Logger,
	}
}

// Launch runs the job in its own goroutine and returns immediately.
func (p *Pipeline) Launch(job *models.Job) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = p.Run(p.baseCtx, job)
	}()
}

// Wait blocks until every launched job has finished or ctx ends.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes the job synchronously and returns the failure, if any, that
// was recorded for it.
func (p *Pipeline) Run(ctx context.Context, job *models.Job) error {
	start := time.Now()
	log := p.logger.With("job_id", job.ID)
	log.Infof("pipeline started with %d slides", len(job.Spec.Slides))

	url, err := p.safeExecute(ctx, job, log)

	// Remove staging before the terminal write; a terminal id may be
	// registered again.
	if cerr := p.staging.Cleanup(job.ID); cerr != nil {
		log.Warnf("staging cleanup failed: %v", cerr)
	}

	if err != nil {
		log.Errorf("pipeline failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		if serr := p.store.SetFailed(p.detached(ctx), job.ID, err.Error()); serr != nil {
			log.Warnf("could not record failure: %v", serr)
		}
	} else {
		log.Infof("pipeline finished in %s", time.Since(start).Round(time.Millisecond))
		if serr := p.store.SetReady(p.detached(ctx), job.ID, url); serr != nil {
			log.Warnf("could not record success: %v", serr)
		}
	}
	return err
}

// safeExecute turns a panic anywhere in the stages into an ordinary failure.
func (p *Pipeline) safeExecute(ctx context.Context, job *models.Job, log logger.Logger) (url string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("pipeline panic: %v\n%s", r, debug.Stack())
			url, err = "", fmt.Errorf("internal error: %v", r)
		}
	}()
	return p.execute(ctx, job, log)
}

func (p *Pipeline) execute(ctx context.Context, job *models.Job, log logger.Logger) (string, error) {
	if len(job.Spec.Slides) == 0 {
		return "", stageError(StageBuild, models.ErrEmptySlideshow)
	}

	sources, err := p.acquirer.FetchAll(ctx, job.ID, job.Spec.Sources())
	if err != nil {
		return "", err
	}
	soundtrack, err := p.acquirer.FetchSoundtrack(ctx, job.ID, job.Spec.Soundtrack)
	if err != nil {
		return "", err
	}
	log.Debugf("acquired %d sources", len(sources))

	images, err := p.normalizer.Normalize(ctx, job.ID, sources)
	if err != nil {
		return "", err
	}
	log.Debugf("normalized %d images", len(images))

	slides := make([]SlideInput, len(images))
	for i, img := range images {
		s := job.Spec.Slides[i]
		slides[i] = SlideInput{Path: img, Duration: s.Duration, Transition: s.Transition}
	}
	inv, err := BuildInvocation(slides, soundtrack, p.staging.OutputPath(job.ID), p.encode)
	if err != nil {
		return "", err
	}
	log.Debugf("render args: %v", inv.Args)

	outcome := p.renderer.Render(ctx, job.ID, inv)
	if !outcome.Success {
		return "", outcome.Err
	}

	return p.publisher.Publish(ctx, job.ID, job.Spec.OwnerID, outcome.OutputPath)
}

// detached keeps status writes working after the service context is
// cancelled, so shutdown still records FAILED.
func (p *Pipeline) detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
