package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Photo is a captured or picked image.
type Photo struct {
	URI string
}

// ImagePicker captures photos from the camera or the photo library.
type ImagePicker interface {
	TakePhoto(ctx context.Context) (Outcome[Photo], error)
	PickFromLibrary(ctx context.Context) (Outcome[Photo], error)
}

// Source names where a photo comes from.
type Source string

const (
	Camera  Source = "camera"
	Library Source = "library"
)

// ErrNoOutcome is returned by ScriptedPicker when its script for a source is
// exhausted.
var ErrNoOutcome = errors.New("no scripted outcome left")

// Step is one scripted answer. Exactly one of URI, Canceled or Err should be
// set.
type Step struct {
	URI      string
	Canceled bool
	Err      string
}

// ScriptedPicker answers from per-source queues of steps, in order. It is
// safe for concurrent use.
type ScriptedPicker struct {
	mu    sync.Mutex
	steps map[Source][]Step
	calls map[Source]int
}

// NewScriptedPicker returns a picker with empty scripts.
func NewScriptedPicker() *ScriptedPicker {
	return &ScriptedPicker{
		steps: make(map[Source][]Step),
		calls: make(map[Source]int),
	}
}

// Push appends steps to the script of src.
func (p *ScriptedPicker) Push(src Source, steps ...Step) *ScriptedPicker {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps[src] = append(p.steps[src], steps...)
	return p
}

// TakePhoto answers with the next camera step.
func (p *ScriptedPicker) TakePhoto(ctx context.Context) (Outcome[Photo], error) {
	return p.next(ctx, Camera)
}

// PickFromLibrary answers with the next library step.
func (p *ScriptedPicker) PickFromLibrary(ctx context.Context) (Outcome[Photo], error) {
	return p.next(ctx, Library)
}

// Calls returns how many times src was asked.
func (p *ScriptedPicker) Calls(src Source) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[src]
}

// Remaining returns how many steps are left for src.
func (p *ScriptedPicker) Remaining(src Source) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.steps[src])
}

func (p *ScriptedPicker) next(ctx context.Context, src Source) (Outcome[Photo], error) {
	if err := ctx.Err(); err != nil {
		return Outcome[Photo]{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls[src]++
	queue := p.steps[src]
	if len(queue) == 0 {
		return Outcome[Photo]{}, fmt.Errorf("%s: %w", src, ErrNoOutcome)
	}
	step := queue[0]
	p.steps[src] = queue[1:]

	switch {
	case step.Err != "":
		return Outcome[Photo]{}, fmt.Errorf("%s: %s", src, step.Err)
	case step.Canceled:
		return Canceled[Photo](), nil
	default:
		return Done(Photo{URI: step.URI}), nil
	}
}
