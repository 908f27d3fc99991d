package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"whispy/audio"
	"whispy/encoder"
	"whispy/log"
	"whispy/output"
	"whispy/toggle"
	"whispy/transcriber"
)

type recState int

const (
	stateIdle recState = iota
	stateRecording
)

func (s recState) String() string {
	if s == stateRecording {
		return "recording"
	}
	return "idle"
}

// controller owns the capture session, the engine and the sinks. Only the
// toggle loop goroutine touches it.
type controller struct {
	recorder   audio.Recorder
	engine     transcriber.Engine
	dispatcher *output.Dispatcher
	events     EventSink
	archive    *encoder.Archive

	state     recState
	session   audio.Session
	sessionID string
	passes    int

	newID func() string
	now   func() time.Time

	// settled, if set, runs once after each toggle that leaves the
	// controller Idle, after every event of that cycle has been sent.
	settled func()
}

func newController(rec audio.Recorder, eng transcriber.Engine, d *output.Dispatcher, events EventSink) *controller {
	if events == nil {
		events = eventFanout(nil)
	}
	return &controller{
		recorder:   rec,
		engine:     eng,
		dispatcher: d,
		events:     events,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// run consumes toggles until ctx is done or the channel closes. An active
// session is stopped and its audio discarded on the way out.
func (c *controller) run(ctx context.Context, toggles <-chan toggle.Event) {
	defer c.abort()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-toggles:
			if !ok {
				return
			}
			c.toggle(ctx)
		}
	}
}

func (c *controller) toggle(ctx context.Context) {
	switch c.state {
	case stateIdle:
		if err := c.start(ctx); err != nil {
			c.events.Failure(err)
			c.settle()
		}
	case stateRecording:
		if err := c.finish(ctx); err != nil {
			c.events.Failure(err)
		}
		c.settle()
	}
}

func (c *controller) settle() {
	if c.settled != nil {
		c.settled()
	}
}

func (c *controller) start(ctx context.Context) error {
	sess, err := c.recorder.Start(ctx)
	if err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	c.session = sess
	c.sessionID = c.newID()
	c.state = stateRecording
	c.events.RecordingStart(c.sessionID)
	return nil
}

// finish stops the active session and runs exactly one transcription pass
// over its audio. The controller is Idle again whatever the outcome.
func (c *controller) finish(ctx context.Context) error {
	sess, id := c.session, c.sessionID
	c.session, c.sessionID = nil, ""
	c.state = stateIdle

	buf, err := sess.Stop()
	c.events.RecordingStop(buf.Duration())
	if err != nil {
		return fmt.Errorf("stop capture: %w", err)
	}
	samples, err := buf.Samples()
	if err != nil {
		return err
	}
	c.save(id, samples)

	begin := c.now()
	segs, err := c.engine.Transcribe(ctx, samples)
	took := c.now().Sub(begin)
	if err != nil {
		return err
	}
	c.passes++

	log.Transcription(log.Metrics{
		SessionID: id,
		AudioS:    buf.Duration().Seconds(),
		Segments:  len(segs),
		TookMs:    float64(took.Microseconds()) / 1000,
		Engine:    c.engine.Name(),
	})
	c.events.Transcription(segs, took)

	if text := output.JoinText(segs); text != "" {
		log.TranscriptionText(text)
	}
	if err := c.dispatcher.Dispatch(ctx, segs); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	return nil
}

func (c *controller) save(id string, samples []float32) {
	if c.archive == nil || len(samples) == 0 {
		return
	}
	path, err := c.archive.Save(id, samples)
	if err != nil {
		log.Warnf("archive: %v", err)
		return
	}
	log.Info("archived: " + path)
}

func (c *controller) abort() {
	if c.state != stateRecording {
		return
	}
	if _, err := c.session.Stop(); err != nil {
		log.Warnf("stop capture on exit: %v", err)
	}
	c.session = nil
	c.state = stateIdle
}
