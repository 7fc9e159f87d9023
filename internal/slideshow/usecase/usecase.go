package usecase

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/logger"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/utils"
)

type slideshowUC struct {
	store             slideshow.JobStore
	launcher          slideshow.Launcher
	allowLocalSources bool
	newID             func() (string, error)
	logger            logger.Logger
}

// NewSlideshowUseCase accepts only remote sources unless allowLocalSources is
// set, which is meant for trusted one-shot renders.
func NewSlideshowUseCase(store slideshow.JobStore, launcher slideshow.Launcher, allowLocalSources bool, log logger.Logger) slideshow.UseCase {
	return &slideshowUC{
		store:             store,
		launcher:          launcher,
		allowLocalSources: allowLocalSources,
		newID:             utils.GenerateJobID,
		logger:            log,
	}
}

// CreateVideo registers the job as IN_PROGRESS and hands it to the pipeline.
// It never waits for, or reports, pipeline outcomes.
func (s *slideshowUC) CreateVideo(ctx context.Context, input *models.CreateVideoInput) (string, error) {
	if input == nil {
		return "", fmt.Errorf("%w: empty request", models.ErrInvalidInput)
	}
	if err := utils.ValidateStruct(ctx, input); err != nil {
		s.logger.Errorf("CreateVideo - ValidateStruct error: %v", err)
		return "", fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	if err := input.CheckSources(s.allowLocalSources); err != nil {
		s.logger.Warnf("CreateVideo - rejected source: %v", err)
		return "", fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	spec, err := input.ToJobSpec()
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	jobID := input.OrderID
	if jobID == "" {
		jobID, err = s.newID()
		if err != nil {
			s.logger.Errorf("CreateVideo - GenerateJobID error: %v", err)
			return "", fmt.Errorf("failed to generate job id: %w", err)
		}
	}

	if err := s.store.Register(ctx, jobID); err != nil {
		s.logger.Errorf("CreateVideo - Register error: %v", err)
		return "", fmt.Errorf("failed to register job: %w", err)
	}

	s.logger.Infof("job %s accepted: %d slides, owner %s", jobID, len(spec.Slides), spec.OwnerID)
	s.launcher.Launch(&models.Job{ID: jobID, Spec: spec})
	return jobID, nil
}

func (s *slideshowUC) GetStatus(ctx context.Context, jobID string) models.StatusResponse {
	rec, ok := s.store.Get(ctx, jobID)
	if !ok {
		return models.StatusResponse{Status: models.JobStatusUnknown}
	}
	resp := models.StatusResponse{Status: rec.Status}
	switch rec.Status {
	case models.JobStatusReady:
		resp.URL = rec.ArtifactURL
	case models.JobStatusFailed:
		resp.Error = rec.Error
	}
	return resp
}
