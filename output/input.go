package output

import (
	"context"
	"fmt"
	"strings"
	"time"

	"whispy/clipboard"
	"whispy/focus"
	"whispy/log"
	"whispy/transcriber"
)

const DefaultRestoreDelay = 600 * time.Millisecond

// PasteFriendly reports whether app should receive text through the
// clipboard. Matching is a case-insensitive prefix test against apps.
func PasteFriendly(app string, apps []string) bool {
	if app == "" {
		return false
	}
	app = strings.ToLower(app)
	for _, a := range apps {
		if a != "" && strings.HasPrefix(app, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// InputSink types the transcript into the focused window, or pastes it
// when the window belongs to an app that mangles synthesized keystrokes.
type InputSink struct {
	inspector focus.Inspector
	injector  clipboard.Injector
	clip      clipboard.Clipboard
	pasteApps []string

	// RestoreDelay > 0 puts the previous clipboard back after a paste.
	RestoreDelay time.Duration
}

func NewInputSink(inspector focus.Inspector, injector clipboard.Injector, clip clipboard.Clipboard, pasteApps []string) *InputSink {
	return &InputSink{
		inspector: inspector,
		injector:  injector,
		clip:      clip,
		pasteApps: pasteApps,
	}
}

func (s *InputSink) Name() string { return "input" }

func (s *InputSink) Write(ctx context.Context, segs []transcriber.Segment) error {
	text := JoinText(segs)
	if text == "" {
		return nil
	}

	app, err := s.inspector.FocusedApp(ctx)
	if err != nil {
		log.Warnf("focus query failed, typing instead: %v", err)
		app = ""
	}

	if PasteFriendly(app, s.pasteApps) {
		log.Debug("paste mode: " + app)
		return s.paste(ctx, text)
	}
	if err := s.injector.Type(ctx, text); err != nil {
		return fmt.Errorf("type: %w", err)
	}
	return nil
}

func (s *InputSink) paste(ctx context.Context, text string) error {
	var prev string
	if s.RestoreDelay > 0 {
		prev, _ = s.clip.Read()
	}
	if err := s.clip.Copy(text); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err := s.injector.Paste(ctx); err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	if s.RestoreDelay > 0 && prev != "" {
		go func() {
			time.Sleep(s.RestoreDelay)
			if err := s.clip.Copy(prev); err != nil {
				log.Warnf("clipboard restore: %v", err)
			}
		}()
	}
	return nil
}
