package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"whispy/output"
	"whispy/transcriber"
)

// TUI message types
type RecordingStartMsg struct{ SessionID string }
type RecordingStopMsg struct{ Audio time.Duration }
type TranscriptionMsg struct {
	Segments []transcriber.Segment
	Took     time.Duration
}
type FailureMsg struct{ Err error }
type ModeLineMsg struct{ Text string }
type tickMsg time.Time

type tuiState int

const (
	tuiStateIdle tuiState = iota
	tuiStateRecording
	tuiStateTranscribing
)

type tuiModel struct {
	state     tuiState
	started   time.Time
	elapsed   time.Duration
	width     int
	modeLine  string
	hint      string
	count     int
	lastText  string
	lastAudio time.Duration
	lastTook  time.Duration
	noSpeech  bool
	lastErr   string
}

var (
	recStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	standbyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	modeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

// NewTUIProgram builds the status view. hint tells the operator how to
// toggle, e.g. "pkill -USR2 whispy".
func NewTUIProgram(modeLine, hint string) *tea.Program {
	m := tuiModel{modeLine: modeLine, hint: hint}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case tickMsg:
		if m.state == tuiStateRecording {
			m.elapsed = time.Time(msg).Sub(m.started)
		}
		return m, tuiTick()

	case RecordingStartMsg:
		m.state = tuiStateRecording
		m.started = time.Now()
		m.elapsed = 0
		m.lastErr = ""

	case RecordingStopMsg:
		m.state = tuiStateTranscribing
		m.lastAudio = msg.Audio

	case TranscriptionMsg:
		m.state = tuiStateIdle
		m.count++
		m.lastText = output.JoinText(msg.Segments)
		m.noSpeech = m.lastText == ""
		m.lastTook = msg.Took

	case FailureMsg:
		m.state = tuiStateIdle
		m.lastErr = msg.Err.Error()

	case ModeLineMsg:
		m.modeLine = msg.Text
	}
	return m, nil
}

func (m tuiModel) View() string {
	var lines []string

	switch m.state {
	case tuiStateRecording:
		lines = append(lines, recStyle.Render(fmt.Sprintf("● REC %.1fs", m.elapsed.Seconds())))
	case tuiStateTranscribing:
		lines = append(lines, busyStyle.Render(fmt.Sprintf("◐ transcribing %.1fs of audio", m.lastAudio.Seconds())))
	default:
		lines = append(lines, standbyStyle.Render("○ STANDBY"))
	}
	if m.modeLine != "" {
		lines = append(lines, modeStyle.Render(m.modeLine))
	}
	lines = append(lines, "")

	wrapWidth := m.width - 2
	if wrapWidth < 20 {
		wrapWidth = 60
	}
	switch {
	case m.lastErr != "":
		for _, l := range wrapText("error: "+m.lastErr, wrapWidth) {
			lines = append(lines, errStyle.Render(l))
		}
	case m.count == 0:
		lines = append(lines, standbyStyle.Render("No transcriptions yet"))
	case m.noSpeech:
		lines = append(lines, warnStyle.Render(fmt.Sprintf("#%d (no speech detected)", m.count)))
	default:
		lines = append(lines, modeStyle.Render(fmt.Sprintf("Last transcription (#%d, %.1fs audio, took %s)",
			m.count, m.lastAudio.Seconds(), m.lastTook.Round(time.Millisecond))))
		for _, l := range wrapText(m.lastText, wrapWidth) {
			lines = append(lines, textStyle.Render(l))
		}
	}

	lines = append(lines, "")
	if m.hint != "" {
		lines = append(lines, boldHelp.Render(m.hint)+helpStyle.Render(" to toggle recording"))
	}
	lines = append(lines, helpStyle.Render("whispy "+version+"  q to quit"))
	return strings.Join(lines, "\n") + "\n"
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		// Find last space within width
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}

// tuiEvents forwards controller events to a running program.
type tuiEvents struct {
	p *tea.Program
}

func (t tuiEvents) RecordingStart(id string) { t.p.Send(RecordingStartMsg{SessionID: id}) }

func (t tuiEvents) RecordingStop(d time.Duration) { t.p.Send(RecordingStopMsg{Audio: d}) }

func (t tuiEvents) Transcription(segs []transcriber.Segment, took time.Duration) {
	t.p.Send(TranscriptionMsg{Segments: segs, Took: took})
}

func (t tuiEvents) Failure(err error) { t.p.Send(FailureMsg{Err: err}) }
