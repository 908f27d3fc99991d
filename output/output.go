// Package output delivers transcript segments to their destination.
package output

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"whispy/transcriber"
)

// Sink receives the segments of one transcription pass.
type Sink interface {
	Name() string
	Write(ctx context.Context, segs []transcriber.Segment) error
}

// Seconds renders d in seconds using the shortest decimal form (0, 1.2).
func Seconds(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Milliseconds())/1000, 'f', -1, 64)
}

// FormatSegment renders the transcript line "[start - end]: text".
func FormatSegment(s transcriber.Segment) string {
	return fmt.Sprintf("[%s - %s]: %s", Seconds(s.Start), Seconds(s.End), strings.TrimSpace(s.Text))
}

// JoinText concatenates segment texts, separating later segments from
// earlier ones with a single space.
func JoinText(segs []transcriber.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// Dispatcher fans one pass out to every configured sink. A failing sink
// does not keep the others from running.
type Dispatcher struct {
	sinks []Sink
}

func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

func (d *Dispatcher) Sinks() []Sink { return d.sinks }

func (d *Dispatcher) Dispatch(ctx context.Context, segs []transcriber.Segment) error {
	if len(segs) == 0 {
		return nil
	}
	var errs []error
	for _, s := range d.sinks {
		if err := s.Write(ctx, segs); err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
