package audio

import (
	"context"
	"errors"
	"sync"
)

// FakeRecorder stands in for a capture backend in tests and the headless
// test mode. Each session yields the next queued buffer, or the default
// buffer once the queue is empty.
type FakeRecorder struct {
	mu       sync.Mutex
	pcm      Buffer
	queue    []Buffer
	starts   int
	active   int
	maxLive  int
	startErr error
	stopErr  error
}

func NewFakeRecorder(pcm Buffer) *FakeRecorder {
	return &FakeRecorder{pcm: pcm}
}

// NewFakeRecorderFromFile replays a WAV or raw f32 file on every session.
func NewFakeRecorderFromFile(path string) (*FakeRecorder, error) {
	samples, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return NewFakeRecorder(FromSamples(samples)), nil
}

func (f *FakeRecorder) Name() string { return "fake" }

func (f *FakeRecorder) Queue(bufs ...Buffer) {
	f.mu.Lock()
	f.queue = append(f.queue, bufs...)
	f.mu.Unlock()
}

func (f *FakeRecorder) FailStart(err error) {
	f.mu.Lock()
	f.startErr = err
	f.mu.Unlock()
}

func (f *FakeRecorder) FailStop(err error) {
	f.mu.Lock()
	f.stopErr = err
	f.mu.Unlock()
}

func (f *FakeRecorder) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

// MaxConcurrent is the largest number of sessions that were live at once.
func (f *FakeRecorder) MaxConcurrent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxLive
}

func (f *FakeRecorder) Start(_ context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.starts++
	f.active++
	f.maxLive = max(f.maxLive, f.active)

	buf := f.pcm
	if len(f.queue) > 0 {
		buf = f.queue[0]
		f.queue = f.queue[1:]
	}
	return &fakeSession{rec: f, buf: append(Buffer(nil), buf...)}, nil
}

type fakeSession struct {
	rec     *FakeRecorder
	buf     Buffer
	stopped bool
}

func (s *fakeSession) Stop() (Buffer, error) {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	if s.stopped {
		return nil, errors.New("session already stopped")
	}
	s.stopped = true
	s.rec.active--
	if s.rec.stopErr != nil {
		return nil, s.rec.stopErr
	}
	return s.buf, nil
}
