// Package doctor checks that the tools and services whispy drives are
// present before the operator starts dictating.
package doctor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"

	"whispy/audio"
	"whispy/clipboard"
	"whispy/config"
	"whispy/focus"
	"whispy/transcriber"
)

type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "PASS"
	case Warn:
		return "WARN"
	default:
		return "FAIL"
	}
}

type Result struct {
	Status Status
	Detail string
}

type Check struct {
	Name string
	Run  func(ctx context.Context) Result
}

type Options struct {
	Config    config.Config
	ModelPath string

	// Interactive adds a record-and-transcribe round trip confirmed by the
	// operator. NewRecorder and NewEngine are only used then.
	Interactive bool
	NewRecorder func() (audio.Recorder, error)
	NewEngine   func() (transcriber.Engine, error)

	In  io.Reader
	Out io.Writer

	lookPath func(string) (string, error)
	getenv   func(string) string
}

func (o *Options) defaults() {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.lookPath == nil {
		o.lookPath = exec.LookPath
	}
	if o.getenv == nil {
		o.getenv = os.Getenv
	}
}

// Run executes every check and returns an exit code (0=no failures, 1=any fail).
func Run(ctx context.Context, opts Options) int {
	opts.defaults()
	if opts.Interactive {
		resetTerminal()
		setupInterruptHandler()
	}

	fmt.Fprintln(opts.Out, "whispy doctor - system diagnostics")
	fmt.Fprintln(opts.Out, "==================================")

	checks := Checks(opts)
	failed := false
	for i, c := range checks {
		fmt.Fprintf(opts.Out, "\n[%d/%d] %s\n", i+1, len(checks), c.Name)
		r := c.Run(ctx)
		fmt.Fprintf(opts.Out, "  %s: %s\n", r.Status, r.Detail)
		if r.Status == Fail {
			failed = true
		}
	}

	fmt.Fprintln(opts.Out)
	if failed {
		fmt.Fprintln(opts.Out, "Some checks failed. See details above.")
		return 1
	}
	fmt.Fprintln(opts.Out, "All checks passed!")
	return 0
}

func Checks(opts Options) []Check {
	opts.defaults()
	checks := []Check{
		{"Model file", func(context.Context) Result { return checkModel(opts.ModelPath) }},
		{"Audio capture", func(context.Context) Result { return checkCapture(opts) }},
		{"Keystroke injection", func(context.Context) Result { return checkInjector(opts) }},
		{"Clipboard", func(context.Context) Result { return checkClipboard(opts) }},
		{"Focused window", func(ctx context.Context) Result { return checkFocus(ctx, opts) }},
	}
	if opts.Interactive {
		checks = append(checks, Check{"Microphone and transcription", func(ctx context.Context) Result {
			return checkRoundTrip(ctx, opts)
		}})
	}
	return checks
}

func checkModel(path string) Result {
	if path == "" {
		return Result{Fail, "no model path given"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{Fail, fmt.Sprintf("cannot read model: %v", err)}
	}
	if info.IsDir() {
		return Result{Fail, path + " is a directory"}
	}
	return Result{Pass, fmt.Sprintf("%s (%.1f MB)", path, float64(info.Size())/1024/1024)}
}

func checkCapture(opts Options) Result {
	c := opts.Config.Capture
	if c.Backend == "pulse" {
		rec, err := audio.NewPulseRecorder(audio.PulseConfig{Source: c.Source})
		if err != nil {
			return Result{Fail, fmt.Sprintf("cannot connect to audio server: %v", err)}
		}
		defer rec.Close()
		sources, err := rec.Sources()
		if err != nil {
			return Result{Fail, err.Error()}
		}
		if len(sources) == 0 {
			return Result{Fail, "no capture sources found"}
		}
		return Result{Pass, fmt.Sprintf("%d sources: %s", len(sources), strings.Join(sources, ", "))}
	}

	argv, err := shellwords.Parse(c.Command)
	if err != nil || len(argv) == 0 {
		return Result{Fail, fmt.Sprintf("bad capture command %q", c.Command)}
	}
	path, err := opts.lookPath(argv[0])
	if err != nil {
		return Result{Fail, fmt.Sprintf("%s not found in PATH", argv[0])}
	}
	return Result{Pass, path}
}

func checkInjector(opts Options) Result {
	in := opts.Config.Input
	if opts.Config.Output.Mode != "input" {
		return Result{Pass, "not used (output mode " + opts.Config.Output.Mode + ")"}
	}
	switch in.Backend {
	case "uinput":
		f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
		if err != nil {
			return Result{Fail, fmt.Sprintf("cannot open /dev/uinput: %v (try: sudo modprobe uinput)", err)}
		}
		f.Close()
		return Result{Pass, "/dev/uinput writable"}
	default:
		path, err := opts.lookPath(in.Backend)
		if err != nil {
			return Result{Fail, in.Backend + " not found in PATH"}
		}
		if in.Backend == "ydotool" && !ydotoolSocketPresent(opts.getenv) {
			return Result{Warn, path + " found but ydotoold socket missing; is ydotoold running?"}
		}
		return Result{Pass, path}
	}
}

func ydotoolSocketPresent(getenv func(string) string) bool {
	candidates := []string{getenv("YDOTOOL_SOCKET")}
	if dir := getenv("XDG_RUNTIME_DIR"); dir != "" {
		candidates = append(candidates, dir+"/.ydotool_socket")
	}
	candidates = append(candidates, "/tmp/.ydotool_socket")
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

func checkClipboard(opts Options) Result {
	if opts.Config.Output.Mode != "input" || len(opts.Config.Input.PasteApps) == 0 {
		return Result{Pass, "paste mode not used"}
	}
	if clipboard.Unsupported() {
		return Result{Fail, "no clipboard tool found (install wl-clipboard, xclip or xsel)"}
	}
	return Result{Pass, "paste mode for " + strings.Join(opts.Config.Input.PasteApps, ", ")}
}

func checkFocus(ctx context.Context, opts Options) Result {
	backend := opts.Config.Focus.Backend
	switch backend {
	case "none":
		return Result{Pass, "disabled, text is always typed"}
	case "sway":
		if opts.getenv("SWAYSOCK") == "" {
			return Result{Warn, "SWAYSOCK not set; every app will be typed into"}
		}
	case "x11":
		if opts.getenv("DISPLAY") == "" {
			return Result{Warn, "DISPLAY not set"}
		}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	insp, err := focus.New(ctx, backend)
	if err != nil {
		return Result{Fail, err.Error()}
	}
	app, err := insp.FocusedApp(ctx)
	if err != nil {
		return Result{Fail, err.Error()}
	}
	if app == "" {
		app = "(none)"
	}
	return Result{Pass, "focused: " + app}
}

func checkRoundTrip(ctx context.Context, opts Options) Result {
	if opts.NewRecorder == nil || opts.NewEngine == nil {
		return Result{Fail, "recorder or engine unavailable"}
	}
	reader := bufio.NewReader(opts.In)

	engine, err := opts.NewEngine()
	if err != nil {
		return Result{Fail, fmt.Sprintf("load engine: %v", err)}
	}
	defer engine.Close()
	rec, err := opts.NewRecorder()
	if err != nil {
		return Result{Fail, fmt.Sprintf("recorder: %v", err)}
	}

	fmt.Fprint(opts.Out, "Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	sess, err := rec.Start(ctx)
	if err != nil {
		return Result{Fail, fmt.Sprintf("start capture: %v", err)}
	}
	time.Sleep(3 * time.Second)
	buf, err := sess.Stop()
	if err != nil {
		return Result{Fail, fmt.Sprintf("recording error: %v", err)}
	}
	if len(buf) == 0 {
		return Result{Fail, "no audio captured"}
	}
	fmt.Fprintf(opts.Out, "  Recorded %.1f KB, transcribing...\n", float64(len(buf))/1024)

	samples, err := buf.Samples()
	if err != nil {
		return Result{Fail, err.Error()}
	}
	segs, err := engine.Transcribe(ctx, samples)
	if err != nil {
		if errors.Is(err, transcriber.ErrTranscriptionFailed) {
			return Result{Fail, fmt.Sprintf("transcription error: %v", err)}
		}
		return Result{Fail, err.Error()}
	}
	var parts []string
	for _, s := range segs {
		parts = append(parts, s.Text)
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Fprintf(opts.Out, "\n  Transcribed text: %s\n\n", text)

	fmt.Fprint(opts.Out, "Is this correct? [y/n]: ")
	confirm, _ := reader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))
	if confirm == "y" || confirm == "yes" {
		return Result{Pass, "transcription verified by user"}
	}
	return Result{Fail, "transcription not confirmed"}
}
