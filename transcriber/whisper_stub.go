//go:build nowhisper

package transcriber

import (
	"context"
	"errors"
)

var errNoWhisper = errors.New("whisper support is disabled in this build (nowhisper tag)")

type Whisper struct{}

func NewWhisper(string, Config) (*Whisper, error) { return nil, errNoWhisper }

func (w *Whisper) Name() string { return "whisper" }

func (w *Whisper) Transcribe(context.Context, []float32) ([]Segment, error) {
	return nil, failed("%v", errNoWhisper)
}

func (w *Whisper) Close() error { return nil }
