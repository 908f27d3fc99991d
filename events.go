package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"whispy/beep"
	"whispy/log"
	"whispy/transcriber"
)

// EventSink abstracts the display layer so the log, the console and the
// TUI can all follow the same recording/transcription events.
type EventSink interface {
	RecordingStart(sessionID string)
	RecordingStop(audio time.Duration)
	Transcription(segs []transcriber.Segment, took time.Duration)
	Failure(err error)
}

// eventFanout forwards every event to each sink in order.
type eventFanout []EventSink

func (f eventFanout) RecordingStart(id string) {
	for _, s := range f {
		s.RecordingStart(id)
	}
}

func (f eventFanout) RecordingStop(d time.Duration) {
	for _, s := range f {
		s.RecordingStop(d)
	}
}

func (f eventFanout) Transcription(segs []transcriber.Segment, took time.Duration) {
	for _, s := range f {
		s.Transcription(segs, took)
	}
}

func (f eventFanout) Failure(err error) {
	for _, s := range f {
		s.Failure(err)
	}
}

type logEvents struct{}

func (logEvents) RecordingStart(id string) { log.Info("recording_start: " + id) }

func (logEvents) RecordingStop(d time.Duration) {
	log.Infof("recording_stop: %.1fs", d.Seconds())
}

func (logEvents) Transcription(segs []transcriber.Segment, _ time.Duration) {
	if len(segs) == 0 {
		log.Info("no_speech")
	}
}

func (logEvents) Failure(err error) {
	if errors.Is(err, transcriber.ErrTranscriptionFailed) {
		log.Errorf("transcription error: %v", err)
		return
	}
	log.Errorf("session error: %v", err)
}

type beepEvents struct{}

func (beepEvents) RecordingStart(string)                               { beep.PlayStart() }
func (beepEvents) RecordingStop(time.Duration)                         { beep.PlayStop() }
func (beepEvents) Transcription([]transcriber.Segment, time.Duration) {}
func (beepEvents) Failure(error)                                       { beep.PlayError() }

// timingEvents prints how long each transcription took (PRINT_TIME=1).
type timingEvents struct {
	w io.Writer
}

func (timingEvents) RecordingStart(string)        {}
func (timingEvents) RecordingStop(time.Duration) {}
func (timingEvents) Failure(error)                {}

func (t timingEvents) Transcription(_ []transcriber.Segment, took time.Duration) {
	fmt.Fprintf(t.w, "Took %s\n", took.Round(time.Millisecond))
}
