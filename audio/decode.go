package audio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
)

// DecodeFile loads an audio file for one-shot transcription. Files with a
// .wav extension are decoded as integer PCM WAV at 16 kHz; anything else is
// treated as raw little-endian float32 mono, the capture format.
func DecodeFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return DecodeWAV(data)
	}
	return Buffer(data).Samples()
}

// DecodeWAV normalizes integer PCM to [-1, 1] and downmixes to mono.
func DecodeWAV(data []byte) ([]float32, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate != SampleRate {
		rate := 0
		if buf.Format != nil {
			rate = buf.Format.SampleRate
		}
		return nil, fmt.Errorf("wav sample rate %d, need %d", rate, SampleRate)
	}
	depth := int(d.BitDepth)
	if depth == 0 || depth > 32 {
		return nil, fmt.Errorf("unsupported wav bit depth %d", depth)
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	scale := float32(int64(1) << (depth - 1))
	frames := len(buf.Data) / channels
	out := make([]float32, frames)
	for i := range out {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[i*channels+c]) / scale
		}
		out[i] = sum / float32(channels)
	}
	return out, nil
}
