package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"golang.org/x/term"

	"whispy/audio"
	"whispy/beep"
	"whispy/clipboard"
	"whispy/config"
	"whispy/doctor"
	"whispy/encoder"
	"whispy/focus"
	"whispy/log"
	"whispy/output"
	"whispy/shutdown"
	"whispy/toggle"
	"whispy/transcriber"
)

var version = "dev"

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: whispy [flags] <model_path> [<audio_path>]\n\n")
	fmt.Fprintf(flag.CommandLine.Output(), "Without <audio_path>, toggles recording on each %s.\n", config.Default().Toggle.Signal)
	fmt.Fprintf(flag.CommandLine.Output(), "With <audio_path>, transcribes that file into transcript.txt and exits.\n\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "config file (default: $XDG_CONFIG_HOME/whispy/config.yaml if present)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: $XDG_CONFIG_HOME/whispy/logs)")
	tuiFlag := flag.Bool("tui", false, "Show a terminal status view")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven): whispy -test <model> <audio>")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	threadsFlag := flag.Int("threads", 0, "Inference threads (default: config, then number of CPUs)")
	langFlag := flag.String("lang", "", "Language code for transcription (e.g. en, de). auto = detect")
	translateFlag := flag.Bool("translate", false, "Translate to English")
	outputFlag := flag.String("output", "", "Output mode: input, file or console")
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("whispy %s\n", version)
		return 0
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *threadsFlag > 0 {
		cfg.Engine.Threads = *threadsFlag
	}
	if *langFlag != "" {
		cfg.Engine.Language = *langFlag
	}
	if *translateFlag {
		cfg.Engine.Translate = true
	}
	if *outputFlag != "" {
		cfg.Output.Mode = *outputFlag
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	args := flag.Args()

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	if *doctorFlag {
		modelPath := ""
		if len(args) > 0 {
			modelPath = args[0]
		}
		return runDoctor(cfg, modelPath)
	}

	if len(args) < 1 || len(args) > 2 {
		flag.Usage()
		return 1
	}
	modelPath := args[0]

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	engine, err := transcriber.NewWhisper(modelPath, engineConfig(cfg, len(args) == 2))
	if err != nil {
		log.Errorf("model load error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer engine.Close()

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	if *testFlag {
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: whispy -test <model_path> <audio_path>")
			return 1
		}
		log.SessionStart(filepath.Base(modelPath), "fake", cfg.Output.Mode)
		disp, closeSinks, err := buildDispatcher(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer closeSinks()
		return runTestMode(ctx, os.Stdin, args[1], engine, disp, nil)
	}

	if len(args) == 2 {
		return runFile(ctx, engine, args[1], cfg)
	}
	return runLive(ctx, engine, modelPath, cfg, *tuiFlag)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		def, err := config.DefaultPath()
		if err == nil {
			if _, err := os.Stat(def); err == nil {
				path = def
			}
		}
	}
	return config.Load(path)
}

func engineConfig(cfg config.Config, fileMode bool) transcriber.Config {
	c := transcriber.Config{
		Threads:         cfg.Engine.Threads,
		Language:        cfg.Engine.Language,
		Translate:       cfg.Engine.Translate,
		TokenTimestamps: cfg.Engine.TokenTimestamps,
		SuppressBlank:   cfg.Engine.SuppressBlank,
		SingleSegment:   cfg.Engine.SingleSegment,
		NoContext:       cfg.Engine.NoContext,
		AlignmentHeads:  cfg.Engine.AlignmentHeads,
	}
	if fileMode {
		// whole files read better as separate timed segments
		c.TokenTimestamps = true
		c.SingleSegment = false
	}
	return c
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func runDoctor(cfg config.Config, modelPath string) int {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && modelPath != ""
	return doctor.Run(context.Background(), doctor.Options{
		Config:      cfg,
		ModelPath:   modelPath,
		Interactive: interactive,
		NewRecorder: func() (audio.Recorder, error) { return newRecorder(cfg) },
		NewEngine: func() (transcriber.Engine, error) {
			return transcriber.NewWhisper(modelPath, engineConfig(cfg, false))
		},
	})
}

// runFile transcribes one audio file into the transcript file and echoes
// every segment with its first token's start time.
func runFile(ctx context.Context, engine transcriber.Engine, audioPath string, cfg config.Config) int {
	samples, err := audio.DecodeFile(audioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fs, err := output.NewFileSink(cfg.Output.TranscriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer fs.Close()

	begin := time.Now()
	segs, err := engine.Transcribe(ctx, samples)
	took := time.Since(begin)
	if err != nil {
		log.Errorf("transcription error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log.Transcription(log.Metrics{
		SessionID: filepath.Base(audioPath),
		AudioS:    float64(len(samples)) / audio.SampleRate,
		Segments:  len(segs),
		TookMs:    float64(took.Microseconds()) / 1000,
		Engine:    engine.Name(),
	})
	if cfg.Output.PrintTime {
		timingEvents{w: os.Stdout}.Transcription(segs, took)
	}

	disp := output.NewDispatcher(fs, output.NewConsoleSink(os.Stdout, output.WithTokenStart()))
	if err := disp.Dispatch(ctx, segs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRecorder(cfg config.Config) (audio.Recorder, error) {
	c := cfg.Capture
	if c.Backend == "pulse" {
		rec, err := audio.NewPulseRecorder(audio.PulseConfig{Source: c.Source, Path: c.Path, Keep: c.Keep})
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	sig, err := toggle.ParseSignal(c.StopSignal)
	if err != nil {
		return nil, fmt.Errorf("capture.stop_signal: %w", err)
	}
	rec, err := audio.NewExecRecorder(audio.ExecConfig{
		Command:    c.Command,
		Output:     audio.OutputMode(c.Output),
		Path:       c.Path,
		StopSignal: sig,
		Keep:       c.Keep,
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// buildDispatcher wires the primary sink for output.mode plus the
// PRINT_TEXT echo. The returned func closes any file the sinks opened.
func buildDispatcher(ctx context.Context, cfg config.Config) (*output.Dispatcher, func(), error) {
	var sinks []output.Sink
	closeSinks := func() {}

	switch cfg.Output.Mode {
	case "file":
		fs, err := output.NewFileSink(cfg.Output.TranscriptPath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fs)
		closeSinks = func() { fs.Close() }
	case "console":
		sinks = append(sinks, output.NewConsoleSink(os.Stdout))
	case "input":
		inspector, err := focus.New(ctx, cfg.Focus.Backend)
		if err != nil {
			log.Warnf("focus backend %s unavailable, always typing: %v", cfg.Focus.Backend, err)
			inspector = focus.None{}
		}
		injector, err := clipboard.NewInjector(cfg.Input.Backend)
		if err != nil {
			return nil, nil, fmt.Errorf("input backend: %w", err)
		}
		in := output.NewInputSink(inspector, injector, clipboard.System{}, cfg.Input.PasteApps)
		if cfg.Input.RestoreClipboard {
			in.RestoreDelay = output.DefaultRestoreDelay
		}
		sinks = append(sinks, in)
	}
	if cfg.Output.PrintText && cfg.Output.Mode != "console" {
		sinks = append(sinks, output.NewConsoleSink(os.Stdout, output.TextOnly()))
	}
	return output.NewDispatcher(sinks...), closeSinks, nil
}

func runLive(ctx context.Context, engine transcriber.Engine, modelPath string, cfg config.Config, withTUI bool) int {
	if cfg.Beep {
		beep.Enable()
	}

	rec, err := newRecorder(cfg)
	if err != nil {
		log.Errorf("capture init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if p, ok := rec.(*audio.PulseRecorder); ok {
		defer p.Close()
	}

	disp, closeSinks, err := buildDispatcher(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeSinks()

	sig, err := toggle.ParseSignal(cfg.Toggle.Signal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: toggle.signal: %v\n", err)
		return 1
	}
	listener := toggle.NewListener(cfg.Toggle.QueueSize)
	listener.Listen(sig)
	defer listener.Stop()

	events := eventFanout{logEvents{}, beepEvents{}}
	if cfg.Output.PrintTime {
		events = append(events, timingEvents{w: os.Stdout})
	}

	c := newController(rec, engine, disp, events)
	if cfg.Archive.Dir != "" {
		c.archive = &encoder.Archive{Dir: cfg.Archive.Dir, Format: cfg.Archive.Format}
	}

	log.SessionStart(filepath.Base(modelPath), rec.Name(), cfg.Output.Mode)
	modeLine := fmt.Sprintf("[%s | %s | %s]", engine.Name(), cfg.Engine.Language, cfg.Output.Mode)
	hint := fmt.Sprintf("pkill -%s whispy", toggle.SignalName(sig))

	if withTUI {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		p := NewTUIProgram(modeLine, hint)
		c.events = append(events, tuiEvents{p: p})
		go func() {
			if _, err := p.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
			cancel()
		}()
		c.run(ctx, listener.Events())
		p.Quit()
	} else {
		fmt.Fprintf(os.Stderr, "whispy %s ready (pid %d): %s to toggle recording\n", version, os.Getpid(), hint)
		c.run(ctx, listener.Events())
	}

	if n := listener.Dropped(); n > 0 {
		log.Warnf("dropped %d toggles, queue full", n)
	}
	log.SessionEnd(c.passes)
	if ctx.Err() != nil {
		log.Info("shutdown")
	}
	return 0
}
