package clipboard

import (
	"context"
	"sync"
)

// FakeInjector records what would have been sent to the focused window.
type FakeInjector struct {
	mu  sync.Mutex
	ops []string
	err error
}

func NewFakeInjector(err error) *FakeInjector { return &FakeInjector{err: err} }

func (f *FakeInjector) Name() string { return "fake" }

func (f *FakeInjector) Type(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "type:"+text)
	return f.err
}

func (f *FakeInjector) Paste(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "paste")
	return f.err
}

func (f *FakeInjector) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

// FakeClipboard is an in-memory selection.
type FakeClipboard struct {
	mu      sync.Mutex
	text    string
	history []string
}

func (f *FakeClipboard) Copy(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.history = append(f.history, text)
	return nil
}

func (f *FakeClipboard) Read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, nil
}

// History lists every value copied, oldest first.
func (f *FakeClipboard) History() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.history...)
}
