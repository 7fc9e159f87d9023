package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/logger"
)

const defaultNotifyTimeout = 2 * time.Second

type memoryJobStore struct {
	mu            sync.RWMutex
	jobs          map[string]*models.JobRecord
	notifier      slideshow.StatusNotifier
	notifyTimeout time.Duration
	logger        logger.Logger
	now           func() time.Time
}

func NewMemoryJobStore(notifier slideshow.StatusNotifier, logger logger.Logger) slideshow.JobStore {
	if notifier == nil {
		notifier = NewNopNotifier()
	}
	return &memoryJobStore{
		jobs:          make(map[string]*models.JobRecord),
		notifier:      notifier,
		notifyTimeout: defaultNotifyTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates a fresh IN_PROGRESS record. A terminal record under the
// same id is replaced; a running one is left alone and ErrJobActive returned.
func (m *memoryJobStore) Register(ctx context.Context, jobID string) error {
	if jobID == "" {
		return models.ErrInvalidJobID
	}
	m.mu.Lock()
	if r, ok := m.jobs[jobID]; ok && !r.Status.IsTerminal() {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", models.ErrJobActive, jobID)
	}
	now := m.now()
	m.jobs[jobID] = &models.JobRecord{
		Status:    models.JobStatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	event := models.StatusEvent{JobID: jobID, Status: models.JobStatusInProgress, Timestamp: now}
	m.mu.Unlock()

	m.notify(ctx, event)
	return nil
}

func (m *memoryJobStore) SetStatus(ctx context.Context, jobID string, status models.JobStatus) error {
	switch status {
	case models.JobStatusReady:
		return fmt.Errorf("status %s requires an artifact url", status)
	case models.JobStatusFailed:
		return m.SetFailed(ctx, jobID, "")
	case models.JobStatusUnknown:
		return fmt.Errorf("status %s cannot be stored", status)
	}
	return m.transition(ctx, jobID, func(r *models.JobRecord) {
		r.Status = status
	})
}

func (m *memoryJobStore) SetReady(ctx context.Context, jobID, url string) error {
	if url == "" {
		return fmt.Errorf("empty artifact url for job %s", jobID)
	}
	return m.transition(ctx, jobID, func(r *models.JobRecord) {
		r.Status = models.JobStatusReady
		r.ArtifactURL = url
	})
}

func (m *memoryJobStore) SetFailed(ctx context.Context, jobID, reason string) error {
	return m.transition(ctx, jobID, func(r *models.JobRecord) {
		r.Status = models.JobStatusFailed
		r.ArtifactURL = ""
		r.Error = reason
	})
}

func (m *memoryJobStore) Get(ctx context.Context, jobID string) (models.JobRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.jobs[jobID]
	if !ok {
		return models.JobRecord{}, false
	}
	return *r, true
}

func (m *memoryJobStore) transition(ctx context.Context, jobID string, apply func(r *models.JobRecord)) error {
	m.mu.Lock()
	r, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", models.ErrJobNotFound, jobID)
	}
	if r.Status.IsTerminal() {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", models.ErrTerminal, jobID, r.Status)
	}
	apply(r)
	r.UpdatedAt = m.now()
	event := models.StatusEvent{
		JobID:     jobID,
		Status:    r.Status,
		URL:       r.ArtifactURL,
		Error:     r.Error,
		Timestamp: r.UpdatedAt,
	}
	m.mu.Unlock()

	m.notify(ctx, event)
	return nil
}

// notify runs outside the lock and is bounded by notifyTimeout. It does not
// inherit the caller's cancellation.
func (m *memoryJobStore) notify(ctx context.Context, event models.StatusEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.notifyTimeout)
	defer cancel()
	if err := m.notifier.Notify(ctx, event); err != nil {
		m.logger.Warnf("status notification for job %s failed: %v", event.JobID, err)
	}
}
