package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/jfreymuth/pulse"
)

type PulseConfig struct {
	Source string // source name; empty selects the server default
	Path   string
	Keep   bool
}

// PulseRecorder captures in-process from a PulseAudio (or pipewire-pulse)
// server instead of spawning a capture tool.
type PulseRecorder struct {
	client *pulse.Client
	cfg    PulseConfig
}

func NewPulseRecorder(cfg PulseConfig) (*PulseRecorder, error) {
	if cfg.Keep && cfg.Path == "" {
		return nil, fmt.Errorf("capture path is required to keep audio")
	}
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &PulseRecorder{client: c, cfg: cfg}, nil
}

func (r *PulseRecorder) Name() string { return "pulse" }

// Sources lists the capture sources known to the server.
func (r *PulseRecorder) Sources() ([]string, error) {
	sources, err := r.client.ListSources()
	if err != nil {
		return nil, fmt.Errorf("pulse list sources: %w", err)
	}
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	return names, nil
}

func (r *PulseRecorder) Close() error {
	r.client.Close()
	return nil
}

type pulseSession struct {
	rec    *PulseRecorder
	stream *pulse.RecordStream

	mu     sync.Mutex
	data   []byte
	once   sync.Once
	halted chan struct{}
}

func (r *PulseRecorder) Start(ctx context.Context) (Session, error) {
	s := &pulseSession{rec: r, halted: make(chan struct{})}

	writer := pulse.Float32Writer(func(buf []float32) (int, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, v := range buf {
			s.data = binary.LittleEndian.AppendUint32(s.data, math.Float32bits(v))
		}
		return len(buf), nil
	})

	opts := []pulse.RecordOption{
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordLatency(0.05),
	}
	if r.cfg.Source != "" {
		source, err := r.client.SourceByID(r.cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("pulse source %q: %w", r.cfg.Source, err)
		}
		opts = append(opts, pulse.RecordSource(source))
	}

	stream, err := r.client.NewRecord(writer, opts...)
	if err != nil {
		return nil, fmt.Errorf("pulse record: %w", err)
	}
	s.stream = stream
	stream.Start()

	go func() {
		select {
		case <-ctx.Done():
			s.halt()
		case <-s.halted:
		}
	}()

	return s, nil
}

func (s *pulseSession) halt() {
	s.once.Do(func() {
		s.stream.Stop()
		s.stream.Close()
		close(s.halted)
	})
}

func (s *pulseSession) Stop() (Buffer, error) {
	s.halt()
	if err := s.stream.Error(); err != nil {
		return nil, fmt.Errorf("pulse stream: %w", err)
	}

	s.mu.Lock()
	buf := Buffer(s.data)
	s.data = nil
	s.mu.Unlock()

	if s.rec.cfg.Keep {
		if err := os.WriteFile(s.rec.cfg.Path, buf, 0644); err != nil {
			return nil, fmt.Errorf("keep audio: %w", err)
		}
	}
	return buf, nil
}
