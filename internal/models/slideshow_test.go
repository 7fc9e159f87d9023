package models

import (
	"errors"
	"testing"
)

func TestCreateVideoInputToJobSpec(t *testing.T) {
	in := &CreateVideoInput{
		Slideshow: []SlideInput{
			{Src: "http://a/1.png", URL: "http://ignored", Duration: 3},
			{URL: "http://a/2.jpg", Duration: 4, Transition: "wipeleft"},
		},
		Soundtrack: "http://a/song.mp3",
	}
	spec, err := in.ToJobSpec()
	if err != nil {
		t.Fatalf("ToJobSpec() error = %v", err)
	}
	if spec.OwnerID != AnonymousOwner {
		t.Fatalf("OwnerID = %q, want %q", spec.OwnerID, AnonymousOwner)
	}
	if got := spec.Slides[0].Source; got != "http://a/1.png" {
		t.Fatalf("slide 0 source = %q, want src to win", got)
	}
	if got := spec.Slides[0].Transition; got != DefaultTransition {
		t.Fatalf("slide 0 transition = %q, want %q", got, DefaultTransition)
	}
	if got := spec.Slides[1].Transition; got != "wipeleft" {
		t.Fatalf("slide 1 transition = %q, want wipeleft", got)
	}
	if spec.Soundtrack != in.Soundtrack {
		t.Fatalf("Soundtrack = %q, want %q", spec.Soundtrack, in.Soundtrack)
	}
	if got := spec.Sources(); len(got) != 2 || got[1] != "http://a/2.jpg" {
		t.Fatalf("Sources() = %v", got)
	}
}

func TestCreateVideoInputEmpty(t *testing.T) {
	_, err := (&CreateVideoInput{}).ToJobSpec()
	if !errors.Is(err, ErrEmptySlideshow) {
		t.Fatalf("err = %v, want ErrEmptySlideshow", err)
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		JobStatusPending:    false,
		JobStatusInProgress: false,
		JobStatusReady:      true,
		JobStatusFailed:     true,
		JobStatusUnknown:    false,
	} {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestCheckSource(t *testing.T) {
	tests := []struct {
		src        string
		allowLocal bool
		want       error
	}{
		{"https://cdn/a.jpg", false, nil},
		{"http://cdn/a.jpg", false, nil},
		{"s3://bucket/a.jpg", false, nil},
		{"file:///etc/passwd", false, ErrLocalSource},
		{"/etc/hostname", false, ErrLocalSource},
		{"slides/a.png", false, ErrLocalSource},
		{"file:///tmp/a.png", true, nil},
		{"/tmp/a.png", true, nil},
		{"concat:/etc/passwd|/etc/hosts", true, ErrSourceScheme},
		{"ftp://host/a.jpg", false, ErrSourceScheme},
		{"https:///nohost.jpg", false, ErrSourceScheme},
	}
	for _, tt := range tests {
		err := CheckSource(tt.src, tt.allowLocal)
		if tt.want == nil && err != nil {
			t.Errorf("CheckSource(%q, %v) = %v, want nil", tt.src, tt.allowLocal, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("CheckSource(%q, %v) = %v, want %v", tt.src, tt.allowLocal, err, tt.want)
		}
	}
}

func TestCheckSourcesCoversSoundtrack(t *testing.T) {
	in := &CreateVideoInput{
		Slideshow:  []SlideInput{{Src: "https://cdn/1.jpg", Duration: 1}},
		Soundtrack: "file:///etc/passwd",
	}
	if err := in.CheckSources(false); !errors.Is(err, ErrLocalSource) {
		t.Fatalf("CheckSources() = %v, want ErrLocalSource", err)
	}
	in.Soundtrack = "https://cdn/song.mp3"
	if err := in.CheckSources(false); err != nil {
		t.Fatalf("CheckSources() = %v", err)
	}
	in.Slideshow[0].Src = "/etc/hostname"
	if err := in.CheckSources(false); !errors.Is(err, ErrLocalSource) {
		t.Fatalf("CheckSources() = %v, want ErrLocalSource", err)
	}
}
