package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow/repository"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/logger"
)

type pipelineFixture struct {
	pipeline  *Pipeline
	store     slideshow.JobStore
	runner    *fakeRunner
	artifacts *fakeArtifactStore
	staging   *Staging
}

func newPipelineFixture(t *testing.T, fetcher slideshow.Fetcher, runner *fakeRunner) *pipelineFixture {
	t.Helper()
	log := logger.NewNopLogger()
	staging := NewStaging(t.TempDir())
	store := repository.NewMemoryJobStore(nil, log)
	artifacts := newFakeArtifactStore()
	if runner == nil {
		runner = &fakeRunner{}
	}
	if runner.run == nil {
		runner.run = func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			switch name {
			case "mogrify":
				fakeMogrify(t, args)
			case "ffmpeg":
				mustWriteFile(t, args[len(args)-1], "rendered-video")
			}
			return CommandResult{}, nil
		}
	}

	p := NewPipeline(context.Background(), PipelineDeps{
		Store:      store,
		Acquirer:   NewAcquirer(fetcher, staging),
		Normalizer: NewNormalizer(runner, staging, NormalizeOptions{Width: 1920, Height: 1080, Background: "black"}),
		Renderer:   NewRenderer(runner, RenderOptions{MaxConcurrent: 2, Timeout: time.Minute}, log),
		Publisher:  NewPublisher(artifacts, "videos"),
		Staging:    staging,
		Encode:     EncodeOptions{FrameRate: 30},
		Logger:     log,
	})
	return &pipelineFixture{pipeline: p, store: store, runner: runner, artifacts: artifacts, staging: staging}
}

func testJob(id string, sources ...string) *models.Job {
	spec := models.JobSpec{OwnerID: models.AnonymousOwner}
	for i, src := range sources {
		spec.Slides = append(spec.Slides, models.SlideSpec{Source: src, Duration: float64(i + 2), Transition: "fade"})
	}
	return &models.Job{ID: id, Spec: spec}
}

func (f *pipelineFixture) run(t *testing.T, job *models.Job) (models.JobRecord, error) {
	t.Helper()
	ctx := context.Background()
	if err := f.store.Register(ctx, job.ID); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := f.pipeline.Run(ctx, job)
	rec, ok := f.store.Get(ctx, job.ID)
	if !ok {
		t.Fatalf("job %s missing from store", job.ID)
	}
	if _, statErr := os.Stat(f.staging.JobDir(job.ID)); !os.IsNotExist(statErr) {
		t.Fatalf("staging for %s still exists (stat err = %v)", job.ID, statErr)
	}
	return rec, err
}

func TestPipelineHappyPath(t *testing.T) {
	f := newPipelineFixture(t, &fakeFetcher{}, nil)
	rec, err := f.run(t, testJob("job-ok", "https://x/1.png", "https://x/2.jpg", "https://x/3.jpg"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.Status != models.JobStatusReady {
		t.Fatalf("status = %s, want READY", rec.Status)
	}
	if rec.ArtifactURL != "https://cdn.example.com/videos/anonymous/job-ok.mp4" {
		t.Fatalf("url = %q", rec.ArtifactURL)
	}
	if string(f.artifacts.uploads["videos/anonymous/job-ok.mp4"]) != "rendered-video" {
		t.Fatalf("uploaded = %v", f.artifacts.uploads)
	}
	if f.runner.called("mogrify") != 1 || f.runner.called("ffmpeg") != 1 {
		t.Fatalf("calls = %v", f.runner.calls)
	}
}

func TestPipelineAcquisitionFailure(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]error{"https://x/2.jpg": errors.New("status 404")}}
	f := newPipelineFixture(t, fetcher, nil)

	rec, err := f.run(t, testJob("job-acq", "https://x/1.jpg", "https://x/2.jpg", "https://x/3.jpg"))
	if !errors.Is(err, ErrAcquisition) {
		t.Fatalf("err = %v, want ErrAcquisition", err)
	}
	if rec.Status != models.JobStatusFailed || !strings.HasPrefix(rec.Error, "acquisition:") {
		t.Fatalf("record = %+v", rec)
	}
	if rec.ArtifactURL != "" {
		t.Fatalf("failed job has url %q", rec.ArtifactURL)
	}
	if len(f.runner.calls) != 0 {
		t.Fatalf("normalize/render ran after acquisition failure: %v", f.runner.calls)
	}
	if len(fetcher.fetched) != 2 {
		t.Fatalf("fetched = %v", fetcher.fetched)
	}
}

func TestPipelineRenderFailure(t *testing.T) {
	runner := &fakeRunner{}
	runner.run = func(ctx context.Context, name string, args ...string) (CommandResult, error) {
		if name == "mogrify" {
			fakeMogrify(t, args)
			return CommandResult{}, nil
		}
		return CommandResult{ExitCode: 1, Stderr: "Error initializing complex filters"}, errors.New("exit status 1")
	}
	f := newPipelineFixture(t, &fakeFetcher{}, runner)

	rec, err := f.run(t, testJob("job-render", "https://x/1.jpg", "https://x/2.jpg"))
	if !errors.Is(err, ErrRender) {
		t.Fatalf("err = %v, want ErrRender", err)
	}
	if rec.Status != models.JobStatusFailed {
		t.Fatalf("status = %s, want FAILED", rec.Status)
	}
	if f.artifacts.uploadCount() != 0 {
		t.Fatal("publish ran after render failure")
	}
}

func TestPipelinePublishFailure(t *testing.T) {
	f := newPipelineFixture(t, &fakeFetcher{}, nil)
	f.artifacts.uploadErr = errors.New("access denied")

	rec, err := f.run(t, testJob("job-pub", "https://x/1.jpg"))
	if !errors.Is(err, ErrPublish) {
		t.Fatalf("err = %v, want ErrPublish", err)
	}
	if rec.Status != models.JobStatusFailed || !strings.Contains(rec.Error, "access denied") {
		t.Fatalf("record = %+v", rec)
	}
	if rec.ArtifactURL != "" {
		t.Fatal("failed publish left a url")
	}
}

type panickingFetcher struct{}

func (panickingFetcher) Fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	panic("fetcher exploded")
}

func TestPipelineRecoversPanics(t *testing.T) {
	f := newPipelineFixture(t, panickingFetcher{}, nil)
	rec, err := f.run(t, testJob("job-panic", "https://x/1.jpg"))
	if err == nil {
		t.Fatal("expected error from panicking stage")
	}
	if rec.Status != models.JobStatusFailed || !strings.Contains(rec.Error, "fetcher exploded") {
		t.Fatalf("record = %+v", rec)
	}
}

func TestPipelineLaunchAndWait(t *testing.T) {
	f := newPipelineFixture(t, &fakeFetcher{}, nil)
	ctx := context.Background()

	ids := []string{"job-a", "job-b", "job-c"}
	for _, id := range ids {
		if err := f.store.Register(ctx, id); err != nil {
			t.Fatal(err)
		}
		f.pipeline.Launch(testJob(id, "https://x/1.jpg", "https://x/2.jpg"))
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := f.pipeline.Wait(waitCtx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	for _, id := range ids {
		rec, _ := f.store.Get(ctx, id)
		if rec.Status != models.JobStatusReady || rec.ArtifactURL == "" {
			t.Fatalf("%s = %+v", id, rec)
		}
	}
}

func TestPipelineStagesSoundtrack(t *testing.T) {
	var ffmpegArgs []string
	runner := &fakeRunner{}
	runner.run = func(ctx context.Context, name string, args ...string) (CommandResult, error) {
		switch name {
		case "mogrify":
			fakeMogrify(t, args)
		case "ffmpeg":
			ffmpegArgs = append([]string(nil), args...)
			mustWriteFile(t, args[len(args)-1], "rendered-video")
		}
		return CommandResult{}, nil
	}
	fetcher := &fakeFetcher{}
	f := newPipelineFixture(t, fetcher, runner)

	job := testJob("job-audio", "https://x/1.jpg", "https://x/2.jpg")
	job.Spec.Soundtrack = "https://x/song.m4a"
	rec, err := f.run(t, job)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rec.Status != models.JobStatusReady {
		t.Fatalf("status = %s", rec.Status)
	}
	if fetcher.fetched[len(fetcher.fetched)-1] != "https://x/song.m4a" {
		t.Fatalf("fetched = %v, want soundtrack fetched", fetcher.fetched)
	}
	staged := f.staging.SoundtrackPath("job-audio", ".m4a")
	if countOf(ffmpegArgs, staged) != 1 {
		t.Fatalf("ffmpeg args %v do not use staged soundtrack %s", ffmpegArgs, staged)
	}
	if countOf(ffmpegArgs, "https://x/song.m4a") != 0 {
		t.Fatalf("ffmpeg read the soundtrack uri directly: %v", ffmpegArgs)
	}
}

func TestPipelineSoundtrackFailure(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]error{"https://x/song.mp3": errors.New("status 403")}}
	f := newPipelineFixture(t, fetcher, nil)

	job := testJob("job-audio-fail", "https://x/1.jpg")
	job.Spec.Soundtrack = "https://x/song.mp3"
	rec, err := f.run(t, job)
	if !errors.Is(err, ErrAcquisition) {
		t.Fatalf("err = %v, want ErrAcquisition", err)
	}
	if rec.Status != models.JobStatusFailed || len(f.runner.calls) != 0 {
		t.Fatalf("record = %+v, calls = %v", rec, f.runner.calls)
	}
}

// stagingCheckStore records whether staging still existed when the job
// turned terminal.
type stagingCheckStore struct {
	slideshow.JobStore
	staging       *Staging
	stagedAtFinal []bool
}

func (s *stagingCheckStore) exists(jobID string) bool {
	_, err := os.Stat(s.staging.JobDir(jobID))
	return err == nil
}

func (s *stagingCheckStore) SetReady(ctx context.Context, jobID, url string) error {
	s.stagedAtFinal = append(s.stagedAtFinal, s.exists(jobID))
	return s.JobStore.SetReady(ctx, jobID, url)
}

func (s *stagingCheckStore) SetFailed(ctx context.Context, jobID, reason string) error {
	s.stagedAtFinal = append(s.stagedAtFinal, s.exists(jobID))
	return s.JobStore.SetFailed(ctx, jobID, reason)
}

func TestPipelineCleansStagingBeforeTerminalStatus(t *testing.T) {
	f := newPipelineFixture(t, &fakeFetcher{fail: map[string]error{"https://x/bad.jpg": errors.New("404")}}, nil)
	store := &stagingCheckStore{JobStore: f.store, staging: f.staging}
	f.pipeline.store = store

	if _, err := f.run(t, testJob("job-clean-ok", "https://x/1.jpg")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := f.run(t, testJob("job-clean-fail", "https://x/1.jpg", "https://x/bad.jpg")); err == nil {
		t.Fatal("expected acquisition failure")
	}
	if len(store.stagedAtFinal) != 2 || store.stagedAtFinal[0] || store.stagedAtFinal[1] {
		t.Fatalf("staging present at terminal write: %v", store.stagedAtFinal)
	}
}

// gatedFetcher blocks the first fetch of gate until release is closed.
type gatedFetcher struct {
	fakeFetcher
	gate    string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedFetcher) Fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	if source == g.gate {
		g.once.Do(func() {
			close(g.started)
			<-g.release
		})
	}
	return g.fakeFetcher.Fetch(ctx, source)
}

func TestPipelineReusedIDWhileRunning(t *testing.T) {
	fetcher := &gatedFetcher{gate: "https://x/slow.jpg", started: make(chan struct{}), release: make(chan struct{})}
	f := newPipelineFixture(t, fetcher, nil)
	ctx := context.Background()

	if err := f.store.Register(ctx, "order-1"); err != nil {
		t.Fatal(err)
	}
	f.pipeline.Launch(testJob("order-1", "https://x/1.jpg", "https://x/slow.jpg"))
	<-fetcher.started

	if err := f.store.Register(ctx, "order-1"); !errors.Is(err, models.ErrJobActive) {
		t.Fatalf("Register() while running err = %v, want ErrJobActive", err)
	}
	close(fetcher.release)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := f.pipeline.Wait(waitCtx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	rec, _ := f.store.Get(ctx, "order-1")
	if rec.Status != models.JobStatusReady {
		t.Fatalf("first run = %+v, want READY", rec)
	}

	if _, err := f.run(t, testJob("order-1", "https://x/3.jpg")); err != nil {
		t.Fatalf("rerun after READY error = %v", err)
	}
}
