package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// Capture format shared by every recorder: 32-bit float, mono, 16 kHz.
const (
	SampleRate     = 16000
	Channels       = 1
	BytesPerSample = 4
)

var ErrMisaligned = errors.New("audio length not a multiple of 4 bytes")

// Buffer holds raw little-endian float32 PCM as produced by the capture tool.
type Buffer []byte

// Samples reinterprets the buffer as float32 samples.
func (b Buffer) Samples() ([]float32, error) {
	if len(b)%BytesPerSample != 0 {
		return nil, fmt.Errorf("%w (%d bytes)", ErrMisaligned, len(b))
	}
	floats := make([]float32, len(b)/BytesPerSample)
	for i := range floats {
		bits := binary.LittleEndian.Uint32(b[i*BytesPerSample:])
		floats[i] = math.Float32frombits(bits)
	}
	return floats, nil
}

func (b Buffer) Duration() time.Duration {
	frames := len(b) / BytesPerSample
	return time.Duration(frames) * time.Second / SampleRate
}

// FromSamples encodes float32 samples into a Buffer.
func FromSamples(samples []float32) Buffer {
	b := make(Buffer, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[i*BytesPerSample:], math.Float32bits(s))
	}
	return b
}

// Recorder starts capture sessions. At most one session is expected to be
// active at a time; the controller enforces that.
type Recorder interface {
	Name() string
	Start(ctx context.Context) (Session, error)
}

// Session is an in-flight capture. Stop ends it and returns everything
// captured since Start.
type Session interface {
	Stop() (Buffer, error)
}
