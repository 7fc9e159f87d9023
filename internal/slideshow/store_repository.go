package slideshow

import (
	"context"

	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
)

// JobStore tracks the lifecycle of every submitted job. Terminal records
// reject every transition except Register.
type JobStore interface {
	Register(ctx context.Context, jobID string) error
	SetStatus(ctx context.Context, jobID string, status models.JobStatus) error
	SetReady(ctx context.Context, jobID, url string) error
	SetFailed(ctx context.Context, jobID, reason string) error
	Get(ctx context.Context, jobID string) (models.JobRecord, bool)
}

type StatusNotifier interface {
	Notify(ctx context.Context, event models.StatusEvent) error
}
