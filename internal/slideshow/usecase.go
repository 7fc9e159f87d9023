package slideshow

import (
	"context"

	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
)

type UseCase interface {
	CreateVideo(ctx context.Context, input *models.CreateVideoInput) (string, error)
	GetStatus(ctx context.Context, jobID string) models.StatusResponse
}

// Launcher starts a job's pipeline without blocking the caller.
type Launcher interface {
	Launch(job *models.Job)
}
