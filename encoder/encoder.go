// Package encoder writes captured sessions to disk as FLAC or WAV.
package encoder

import (
	"fmt"
	"io"
	"math"
)

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder consumes 16-bit mono blocks and finalizes the container on Close.
type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	TotalFrames() uint64
}

// New returns an encoder for format ("flac" or "wav") writing to w.
func New(format string, w io.WriteSeeker) (Encoder, error) {
	switch format {
	case "flac":
		return NewFlac(w)
	case "wav":
		return NewWav(w), nil
	default:
		return nil, fmt.Errorf("unknown archive format %q", format)
	}
}

// ToPCM16 converts float samples in [-1, 1] to 16-bit PCM, clipping
// anything outside that range.
func ToPCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(float64(s) * math.MaxInt16)
		out[i] = int16(max(math.MinInt16, min(math.MaxInt16, v)))
	}
	return out
}

// EncodeAll feeds samples to enc in BlockSize blocks and closes it.
func EncodeAll(enc Encoder, samples []float32) error {
	pcm := ToPCM16(samples)
	for i := 0; i < len(pcm); i += BlockSize {
		end := min(i+BlockSize, len(pcm))
		if err := enc.EncodeBlock(pcm[i:end]); err != nil {
			return err
		}
	}
	return enc.Close()
}
