package transcriber

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"whispy/audio"
)

// ErrTranscriptionFailed marks an engine-internal failure, as opposed to a
// pass that simply produced no segments.
var ErrTranscriptionFailed = errors.New("transcription failed")

// MinSamples is the shortest input (100 ms) worth handing to the engine.
// Anything shorter yields zero segments without an engine call.
const MinSamples = audio.SampleRate / 10

type Token struct {
	Text  string
	Start time.Duration
	End   time.Duration
	P     float32
}

type Segment struct {
	Start  time.Duration
	End    time.Duration
	Text   string
	Tokens []Token // only with token timestamps enabled
}

type Config struct {
	Threads         int
	Language        string // "auto" lets the model detect it
	Translate       bool
	TokenTimestamps bool
	SuppressBlank   bool
	SingleSegment   bool
	NoContext       bool
	AlignmentHeads  string // preset name, e.g. "base.en"
}

func DefaultConfig() Config {
	return Config{
		Threads:       runtime.NumCPU(),
		Language:      "en",
		SuppressBlank: true,
		SingleSegment: true,
		NoContext:     true,
	}
}

// Engine turns mono 16 kHz samples into segments. Calls are synchronous and
// serialized per instance.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, samples []float32) ([]Segment, error)
	Close() error
}

func failed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTranscriptionFailed, fmt.Sprintf(format, args...))
}
