package models

import "fmt"

type SlideInput struct {
	Src        string  `json:"src" validate:"required_without=URL"`
	URL        string  `json:"url" validate:"required_without=Src"`
	Duration   float64 `json:"duration" validate:"gt=0"`
	Transition string  `json:"transition" validate:"omitempty,lte=64"`
}

// Source returns src when set and url otherwise.
func (s SlideInput) Source() string {
	if s.Src != "" {
		return s.Src
	}
	return s.URL
}

type CreateVideoInput struct {
	Slideshow  []SlideInput `json:"slideshow" validate:"required,min=1,dive"`
	Soundtrack string       `json:"soundtrack"`
	OrderID    string       `json:"orderId" validate:"omitempty,jobid"`
	UserID     string       `json:"userID" validate:"omitempty,jobid"`
}

// CheckSources runs CheckSource over every slide and the soundtrack.
func (in *CreateVideoInput) CheckSources(allowLocal bool) error {
	for i, s := range in.Slideshow {
		if err := CheckSource(s.Source(), allowLocal); err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
	}
	if in.Soundtrack != "" {
		if err := CheckSource(in.Soundtrack, allowLocal); err != nil {
			return fmt.Errorf("soundtrack: %w", err)
		}
	}
	return nil
}

// ToJobSpec applies defaults and converts the request into a JobSpec.
func (in *CreateVideoInput) ToJobSpec() (JobSpec, error) {
	if len(in.Slideshow) == 0 {
		return JobSpec{}, ErrEmptySlideshow
	}
	spec := JobSpec{
		Slides:     make([]SlideSpec, len(in.Slideshow)),
		Soundtrack: in.Soundtrack,
		OwnerID:    in.UserID,
	}
	if spec.OwnerID == "" {
		spec.OwnerID = AnonymousOwner
	}
	for i, s := range in.Slideshow {
		transition := s.Transition
		if transition == "" {
			transition = DefaultTransition
		}
		spec.Slides[i] = SlideSpec{
			Source:     s.Source(),
			Duration:   s.Duration,
			Transition: transition,
		}
	}
	return spec, nil
}

type CreateVideoResponse struct {
	ID string `json:"id"`
}

type StatusResponse struct {
	Status JobStatus `json:"status"`
	URL    string    `json:"url,omitempty"`
	Error  string    `json:"error,omitempty"`
}
