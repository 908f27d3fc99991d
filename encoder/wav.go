package encoder

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type WavEncoder struct {
	enc         *wav.Encoder
	totalFrames uint64
}

func NewWav(w io.WriteSeeker) *WavEncoder {
	return &WavEncoder{enc: wav.NewEncoder(w, SampleRate, BitsPerSample, Channels, 1)}
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: Channels, SampleRate: SampleRate},
		Data:           make([]int, len(block)),
		SourceBitDepth: BitsPerSample,
	}
	for i, s := range block {
		buf.Data[i] = int(s)
	}
	if err := e.enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}

func (e *WavEncoder) TotalFrames() uint64 { return e.totalFrames }
