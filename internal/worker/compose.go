package worker

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	transitionDuration = 1.0
	edgePadding        = 1.0
	interiorPadding    = 2.0

	defaultTransitionStyle = "fade"
)

type SlideInput struct {
	Path       string
	Duration   float64
	Transition string
}

type EncodeOptions struct {
	VideoCodec  string
	PixelFormat string
	FrameRate   int
}

// Transition is one xfade step of the filter graph.
type Transition struct {
	Style       string
	Offset      float64
	Duration    float64
	InputLabel  string
	NextLabel   string
	OutputLabel string
}

// Invocation is a fully built renderer command line.
type Invocation struct {
	Args        []string
	FilterGraph string
	Transitions []Transition
	VideoLabel  string
	Output      string
}

// BuildInvocation turns ordered slides into renderer arguments. Each slide is
// looped for its duration plus padding that absorbs the overlap of adjacent
// crossfades, and consecutive slides are chained through xfade filters.
// A single slide is mapped straight through without a filter graph.
func BuildInvocation(slides []SlideInput, soundtrack, output string, opts EncodeOptions) (*Invocation, error) {
	n := len(slides)
	if n == 0 {
		return nil, stageErrorf(StageBuild, "no slides")
	}
	if output == "" {
		return nil, stageErrorf(StageBuild, "empty output path")
	}
	for i, s := range slides {
		if s.Path == "" {
			return nil, stageErrorf(StageBuild, "slide %d has no image", i+1)
		}
		if !(s.Duration > 0) || math.IsInf(s.Duration, 0) {
			return nil, stageErrorf(StageBuild, "slide %d has invalid duration %v", i+1, s.Duration)
		}
	}
	opts = withEncodeDefaults(opts)

	inv := &Invocation{Output: output}
	args := make([]string, 0, n*6+24)
	for i, s := range slides {
		args = append(args,
			"-loop", "1",
			"-t", formatSeconds(s.Duration+padding(i, n)),
			"-i", s.Path,
		)
	}
	if soundtrack != "" {
		args = append(args, "-i", soundtrack)
	}

	if n == 1 {
		inv.VideoLabel = "0:v"
	} else {
		inv.Transitions = chainTransitions(slides)
		inv.FilterGraph = filterGraph(inv.Transitions)
		inv.VideoLabel = inv.Transitions[len(inv.Transitions)-1].OutputLabel
		args = append(args, "-filter_complex", inv.FilterGraph)
	}

	args = append(args, "-map", mapLabel(inv.VideoLabel))
	if soundtrack != "" {
		args = append(args, "-map", strconv.Itoa(n)+":a", "-shortest")
	}
	args = append(args,
		"-c:v", opts.VideoCodec,
		"-pix_fmt", opts.PixelFormat,
		"-r", strconv.Itoa(opts.FrameRate),
		"-movflags", "+faststart",
		"-y", output,
	)
	inv.Args = args
	return inv, nil
}

// chainTransitions computes the N-1 crossfades. The offset of transition k is
// the sum of the first k+1 slide durations plus one transition length per
// earlier transition, so offsets strictly increase.
func chainTransitions(slides []SlideInput) []Transition {
	transitions := make([]Transition, 0, len(slides)-1)
	offset := 0.0
	for k := 0; k < len(slides)-1; k++ {
		offset += slides[k].Duration
		in := "0:v"
		if k > 0 {
			in = "v" + strconv.Itoa(k)
		}
		style := slides[k].Transition
		if style == "" {
			style = defaultTransitionStyle
		}
		transitions = append(transitions, Transition{
			Style:       style,
			Offset:      round3(offset),
			Duration:    transitionDuration,
			InputLabel:  in,
			NextLabel:   strconv.Itoa(k+1) + ":v",
			OutputLabel: "v" + strconv.Itoa(k+1),
		})
		offset += transitionDuration
	}
	return transitions
}

func filterGraph(transitions []Transition) string {
	parts := make([]string, len(transitions))
	for i, t := range transitions {
		parts[i] = fmt.Sprintf("[%s][%s]xfade=transition=%s:duration=%s:offset=%s[%s]",
			t.InputLabel, t.NextLabel, t.Style, formatSeconds(t.Duration), formatSeconds(t.Offset), t.OutputLabel)
	}
	return strings.Join(parts, ";")
}

func padding(i, n int) float64 {
	switch {
	case n == 1:
		return 0
	case i == 0 || i == n-1:
		return edgePadding
	default:
		return interiorPadding
	}
}

func mapLabel(label string) string {
	if strings.Contains(label, ":") {
		return label
	}
	return "[" + label + "]"
}

func withEncodeDefaults(opts EncodeOptions) EncodeOptions {
	if opts.VideoCodec == "" {
		opts.VideoCodec = "libx264"
	}
	if opts.PixelFormat == "" {
		opts.PixelFormat = "yuv420p"
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}
	return opts
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(round3(v), 'f', -1, 64)
}
