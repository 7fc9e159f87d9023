package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusReady      JobStatus = "READY"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusUnknown    JobStatus = "UNKNOWN"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusReady || s == JobStatusFailed
}

const (
	DefaultTransition = "fade"
	AnonymousOwner    = "anonymous"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrEmptySlideshow = errors.New("slideshow must contain at least one slide")
	ErrInvalidJobID   = errors.New("invalid job id")
	ErrJobNotFound    = errors.New("job not found")
	ErrTerminal       = errors.New("job already in a terminal state")
	ErrJobActive      = errors.New("job with this id is still running")
	ErrLocalSource    = errors.New("local sources are not accepted")
	ErrSourceScheme   = errors.New("unsupported source scheme")
)

type SlideSpec struct {
	Source     string  `json:"src"`
	Duration   float64 `json:"duration"`
	Transition string  `json:"transition"`
}

type JobSpec struct {
	Slides     []SlideSpec `json:"slideshow"`
	Soundtrack string      `json:"soundtrack,omitempty"`
	OwnerID    string      `json:"userID"`
}

// Sources returns slide URIs in render order.
func (s *JobSpec) Sources() []string {
	out := make([]string, len(s.Slides))
	for i, sl := range s.Slides {
		out[i] = sl.Source
	}
	return out
}

type Job struct {
	ID   string
	Spec JobSpec
}

type JobRecord struct {
	Status      JobStatus `json:"status"`
	ArtifactURL string    `json:"url,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StatusEvent is emitted on every accepted job transition.
type StatusEvent struct {
	JobID     string    `json:"id"`
	Status    JobStatus `json:"status"`
	URL       string    `json:"url,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckSource accepts http(s) and s3 URIs. file:// URIs and bare paths pass
// only when allowLocal is set.
func CheckSource(src string, allowLocal bool) error {
	u, err := url.Parse(src)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrSourceScheme, src)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "s3":
		if u.Host == "" {
			return fmt.Errorf("%w: %q has no host", ErrSourceScheme, src)
		}
		return nil
	case "file", "":
		if allowLocal {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrLocalSource, src)
	default:
		return fmt.Errorf("%w: %q", ErrSourceScheme, src)
	}
}
