package output

import (
	"context"
	"fmt"
	"os"
	"sync"

	"whispy/transcriber"
)

// FileSink writes one line per segment. The file is truncated when the sink
// is opened, so each run starts a fresh transcript.
type FileSink struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	return &FileSink{f: f, path: path}, nil
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Write(_ context.Context, segs []transcriber.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seg := range segs {
		if _, err := fmt.Fprintln(s.f, FormatSegment(seg)); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
