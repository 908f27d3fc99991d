// Package config loads whispy settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"whispy/toggle"
)

type EngineConfig struct {
	Threads         int    `yaml:"threads"`
	Language        string `yaml:"language"`
	Translate       bool   `yaml:"translate"`
	TokenTimestamps bool   `yaml:"token_timestamps"`
	SuppressBlank   bool   `yaml:"suppress_blank"`
	SingleSegment   bool   `yaml:"single_segment"`
	NoContext       bool   `yaml:"no_context"`
	AlignmentHeads  string `yaml:"alignment_heads"`
}

type CaptureConfig struct {
	Backend    string `yaml:"backend"` // exec, pulse
	Command    string `yaml:"command"`
	Output     string `yaml:"output"` // file, stdout
	Path       string `yaml:"path"`
	StopSignal string `yaml:"stop_signal"`
	Source     string `yaml:"source"` // pulse source name
	Keep       bool   `yaml:"keep"`
}

type OutputConfig struct {
	Mode           string `yaml:"mode"` // input, file, console
	TranscriptPath string `yaml:"transcript_path"`
	PrintText      bool   `yaml:"print_text"`
	PrintTime      bool   `yaml:"print_time"`
}

type InputConfig struct {
	Backend          string   `yaml:"backend"` // ydotool, xdotool, uinput
	PasteApps        []string `yaml:"paste_apps"`
	RestoreClipboard bool     `yaml:"restore_clipboard"`
}

type FocusConfig struct {
	Backend string `yaml:"backend"` // sway, x11, none
}

type ToggleConfig struct {
	Signal    string `yaml:"signal"`
	QueueSize int    `yaml:"queue_size"`
}

type ArchiveConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // flac, wav
}

type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Capture CaptureConfig `yaml:"capture"`
	Output  OutputConfig  `yaml:"output"`
	Input   InputConfig   `yaml:"input"`
	Focus   FocusConfig   `yaml:"focus"`
	Toggle  ToggleConfig  `yaml:"toggle"`
	Archive ArchiveConfig `yaml:"archive"`
	Beep    bool          `yaml:"beep"`
}

func Default() Config {
	return Config{
		Engine: EngineConfig{
			Threads:       runtime.NumCPU(),
			Language:      "en",
			SuppressBlank: true,
			SingleSegment: true,
			NoContext:     true,
		},
		Capture: CaptureConfig{
			Backend:    "exec",
			Command:    "pw-record --format=f32 --rate=16000 --channels=1",
			Output:     "file",
			Path:       "/tmp/a.au",
			StopSignal: "SIGINT",
		},
		Output: OutputConfig{
			Mode:           "input",
			TranscriptPath: "transcript.txt",
		},
		Input: InputConfig{
			Backend:   "ydotool",
			PasteApps: []string{"firefox"},
		},
		Focus: FocusConfig{
			Backend: "sway",
		},
		Toggle: ToggleConfig{
			Signal:    "SIGUSR2",
			QueueSize: toggle.DefaultQueueSize,
		},
		Archive: ArchiveConfig{
			Format: "flac",
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/whispy/config.yaml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "whispy", "config.yaml"), nil
}

// Load reads path on top of the defaults. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideInt(&cfg.Engine.Threads, "WHISPY_ENGINE_THREADS")
	overrideString(&cfg.Engine.Language, "WHISPY_ENGINE_LANGUAGE")
	overrideBool(&cfg.Engine.Translate, "WHISPY_ENGINE_TRANSLATE")
	overrideBool(&cfg.Engine.TokenTimestamps, "WHISPY_ENGINE_TOKEN_TIMESTAMPS")
	overrideString(&cfg.Engine.AlignmentHeads, "WHISPY_ENGINE_ALIGNMENT_HEADS")

	overrideString(&cfg.Capture.Backend, "WHISPY_CAPTURE_BACKEND")
	overrideString(&cfg.Capture.Command, "WHISPY_CAPTURE_COMMAND")
	overrideString(&cfg.Capture.Output, "WHISPY_CAPTURE_OUTPUT")
	overrideString(&cfg.Capture.Path, "WHISPY_CAPTURE_PATH")
	overrideString(&cfg.Capture.StopSignal, "WHISPY_CAPTURE_STOP_SIGNAL")
	overrideString(&cfg.Capture.Source, "WHISPY_CAPTURE_SOURCE")
	overrideFlag(&cfg.Capture.Keep, "KEEP_AUDIO")

	overrideString(&cfg.Output.Mode, "WHISPY_OUTPUT_MODE")
	overrideString(&cfg.Output.TranscriptPath, "WHISPY_OUTPUT_TRANSCRIPT_PATH")
	overrideFlag(&cfg.Output.PrintText, "PRINT_TEXT")
	overrideFlag(&cfg.Output.PrintTime, "PRINT_TIME")

	overrideString(&cfg.Input.Backend, "WHISPY_INPUT_BACKEND")
	overrideStringSlice(&cfg.Input.PasteApps, "WHISPY_INPUT_PASTE_APPS")
	overrideBool(&cfg.Input.RestoreClipboard, "WHISPY_INPUT_RESTORE_CLIPBOARD")

	overrideString(&cfg.Focus.Backend, "WHISPY_FOCUS_BACKEND")

	overrideString(&cfg.Toggle.Signal, "WHISPY_TOGGLE_SIGNAL")
	overrideInt(&cfg.Toggle.QueueSize, "WHISPY_TOGGLE_QUEUE_SIZE")

	overrideString(&cfg.Archive.Dir, "WHISPY_ARCHIVE_DIR")
	overrideString(&cfg.Archive.Format, "WHISPY_ARCHIVE_FORMAT")

	overrideBool(&cfg.Beep, "WHISPY_BEEP")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

// overrideFlag follows the PRINT_TEXT=1 convention: only "1" enables.
func overrideFlag(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		*target = value == "1"
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, ", "), value)
}

func Validate(cfg Config) error {
	if cfg.Engine.Threads < 1 {
		return fmt.Errorf("engine.threads must be positive")
	}
	if err := oneOf("capture.backend", cfg.Capture.Backend, "exec", "pulse"); err != nil {
		return err
	}
	if cfg.Capture.Backend == "exec" {
		if strings.TrimSpace(cfg.Capture.Command) == "" {
			return fmt.Errorf("capture.command is required for the exec backend")
		}
		if err := oneOf("capture.output", cfg.Capture.Output, "file", "stdout"); err != nil {
			return err
		}
		if cfg.Capture.Output == "file" && cfg.Capture.Path == "" {
			return fmt.Errorf("capture.path is required when capture.output is file")
		}
	}
	if cfg.Capture.Keep && cfg.Capture.Path == "" {
		return fmt.Errorf("capture.path is required to keep audio")
	}
	if _, err := toggle.ParseSignal(cfg.Capture.StopSignal); err != nil {
		return fmt.Errorf("capture.stop_signal: %w", err)
	}
	if err := oneOf("output.mode", cfg.Output.Mode, "input", "file", "console"); err != nil {
		return err
	}
	if cfg.Output.Mode == "file" && cfg.Output.TranscriptPath == "" {
		return fmt.Errorf("output.transcript_path is required when output.mode is file")
	}
	if err := oneOf("input.backend", cfg.Input.Backend, "ydotool", "xdotool", "uinput"); err != nil {
		return err
	}
	if err := oneOf("focus.backend", cfg.Focus.Backend, "sway", "x11", "none"); err != nil {
		return err
	}
	sig, err := toggle.ParseSignal(cfg.Toggle.Signal)
	if err != nil {
		return fmt.Errorf("toggle.signal: %w", err)
	}
	for _, reserved := range []string{"SIGINT", "SIGTERM"} {
		if r, _ := toggle.ParseSignal(reserved); sig == r {
			return fmt.Errorf("toggle.signal cannot be %s, it terminates whispy", reserved)
		}
	}
	if cfg.Toggle.QueueSize < 1 {
		return fmt.Errorf("toggle.queue_size must be positive")
	}
	if err := oneOf("archive.format", cfg.Archive.Format, "flac", "wav"); err != nil {
		return err
	}
	return nil
}
