package transcriber

import (
	"context"
	"fmt"
	"sync"
)

type FakeEngine struct {
	mu       sync.Mutex
	segments []Segment
	err      error
	calls    [][]float32
}

func NewFake(segments []Segment, err error) *FakeEngine {
	return &FakeEngine{segments: segments, err: err}
}

func (f *FakeEngine) Name() string { return "fake" }

func (f *FakeEngine) Transcribe(ctx context.Context, samples []float32) ([]Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]float32(nil), samples...))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(samples) < MinSamples {
		return nil, nil
	}
	if f.err != nil {
		return nil, fmt.Errorf("%w: fake: %w", ErrTranscriptionFailed, f.err)
	}
	return append([]Segment(nil), f.segments...), nil
}

// Calls returns the sample slices of every Transcribe call so far.
func (f *FakeEngine) Calls() [][]float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]float32(nil), f.calls...)
}

func (f *FakeEngine) Close() error { return nil }
