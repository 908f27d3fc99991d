//go:build !nowhisper

package transcriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"whispy/log"
)

// Whisper runs a local whisper.cpp model through the Go binding.
type Whisper struct {
	mu    sync.Mutex
	model whisper.Model
	cfg   Config
}

// NewWhisper loads the model once. The language setting is checked here so
// a bad value fails at startup instead of on the first session.
func NewWhisper(modelPath string, cfg Config) (*Whisper, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", modelPath, err)
	}
	w := &Whisper{model: model, cfg: cfg}

	wctx, err := model.NewContext()
	if err != nil {
		model.Close()
		return nil, fmt.Errorf("create context: %w", err)
	}
	if err := w.configure(wctx); err != nil {
		model.Close()
		return nil, err
	}
	if cfg.AlignmentHeads != "" {
		log.Warnf("alignment heads preset %q ignored: not exposed by the whisper binding", cfg.AlignmentHeads)
	}
	return w, nil
}

func (w *Whisper) Name() string { return "whisper" }

func (w *Whisper) configure(wctx whisper.Context) error {
	if w.cfg.Threads > 0 {
		wctx.SetThreads(uint(w.cfg.Threads))
	}
	if w.cfg.Language != "" {
		if err := wctx.SetLanguage(w.cfg.Language); err != nil {
			return fmt.Errorf("language %q: %w", w.cfg.Language, err)
		}
	}
	wctx.SetTranslate(w.cfg.Translate)
	wctx.SetTokenTimestamps(w.cfg.TokenTimestamps)
	if w.cfg.NoContext {
		wctx.SetMaxContext(0)
	}
	return nil
}

func (w *Whisper) Transcribe(ctx context.Context, samples []float32) ([]Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(samples) < MinSamples {
		return nil, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	wctx, err := w.model.NewContext()
	if err != nil {
		return nil, failed("create context: %v", err)
	}
	if err := w.configure(wctx); err != nil {
		return nil, failed("%v", err)
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, failed("process: %v", err)
	}

	var segs []Segment
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, failed("next segment: %v", err)
		}
		segs = append(segs, fromBinding(seg))
	}
	return Postprocess(segs, w.cfg), nil
}

func fromBinding(seg whisper.Segment) Segment {
	s := Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	for _, tok := range seg.Tokens {
		s.Tokens = append(s.Tokens, Token{Text: tok.Text, Start: tok.Start, End: tok.End, P: tok.P})
	}
	return s
}

func (w *Whisper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.model.Close()
}
