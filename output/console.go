package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"whispy/transcriber"
)

var stampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// ConsoleSink prints segments to a terminal or pipe.
type ConsoleSink struct {
	w      io.Writer
	styled bool
	plain  bool // text only, no timestamps
	tokens bool // append the first token's start time
}

type ConsoleOption func(*ConsoleSink)

// TextOnly prints bare transcript text, one line per pass.
func TextOnly() ConsoleOption { return func(s *ConsoleSink) { s.plain = true } }

// WithTokenStart adds the first token's start time to each line.
func WithTokenStart() ConsoleOption { return func(s *ConsoleSink) { s.tokens = true } }

// NewConsoleSink styles timestamps only when w is a terminal.
func NewConsoleSink(w io.Writer, opts ...ConsoleOption) *ConsoleSink {
	s := &ConsoleSink{w: w}
	if f, ok := w.(*os.File); ok {
		s.styled = term.IsTerminal(int(f.Fd()))
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Write(_ context.Context, segs []transcriber.Segment) error {
	if s.plain {
		text := JoinText(segs)
		if text == "" {
			return nil
		}
		_, err := fmt.Fprintln(s.w, text)
		return err
	}
	for _, seg := range segs {
		stamp := fmt.Sprintf("[%s - %s]", Seconds(seg.Start), Seconds(seg.End))
		if s.tokens {
			first := "-1"
			if len(seg.Tokens) > 0 {
				first = Seconds(seg.Tokens[0].Start)
			}
			stamp = fmt.Sprintf("[%s - %s (%s)]", Seconds(seg.Start), Seconds(seg.End), first)
		}
		if s.styled {
			stamp = stampStyle.Render(stamp)
		}
		if _, err := fmt.Fprintf(s.w, "%s: %s\n", stamp, strings.TrimSpace(seg.Text)); err != nil {
			return err
		}
	}
	return nil
}
