package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Capture.Command != "pw-record --format=f32 --rate=16000 --channels=1" {
		t.Errorf("capture command = %q", cfg.Capture.Command)
	}
	if cfg.Capture.Path != "/tmp/a.au" {
		t.Errorf("capture path = %q", cfg.Capture.Path)
	}
	if cfg.Toggle.Signal != "SIGUSR2" || cfg.Toggle.QueueSize != 100 {
		t.Errorf("toggle = %+v", cfg.Toggle)
	}
	if !reflect.DeepEqual(cfg.Input.PasteApps, []string{"firefox"}) {
		t.Errorf("paste apps = %v", cfg.Input.PasteApps)
	}
	if cfg.Capture.Keep || cfg.Output.PrintText || cfg.Output.PrintTime {
		t.Error("env-driven flags should default off")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
engine:
  threads: 2
  language: auto
capture:
  output: stdout
input:
  backend: xdotool
  paste_apps: [firefox, chromium]
focus:
  backend: x11
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.Threads != 2 || cfg.Engine.Language != "auto" {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if !cfg.Engine.NoContext {
		t.Error("unset keys should keep defaults")
	}
	if cfg.Capture.Output != "stdout" || cfg.Input.Backend != "xdotool" || cfg.Focus.Backend != "x11" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.Input.PasteApps) != 2 {
		t.Errorf("paste apps = %v", cfg.Input.PasteApps)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("engine: [unclosed"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PRINT_TEXT", "1")
	t.Setenv("PRINT_TIME", "1")
	t.Setenv("KEEP_AUDIO", "1")
	t.Setenv("WHISPY_ENGINE_THREADS", "3")
	t.Setenv("WHISPY_INPUT_PASTE_APPS", "firefox, chromium ,")
	t.Setenv("WHISPY_TOGGLE_SIGNAL", "usr1")
	t.Setenv("WHISPY_CAPTURE_OUTPUT", "stdout")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Output.PrintText || !cfg.Output.PrintTime || !cfg.Capture.Keep {
		t.Error("expected PRINT_TEXT, PRINT_TIME and KEEP_AUDIO to enable")
	}
	if cfg.Engine.Threads != 3 {
		t.Errorf("threads = %d", cfg.Engine.Threads)
	}
	if !reflect.DeepEqual(cfg.Input.PasteApps, []string{"firefox", "chromium"}) {
		t.Errorf("paste apps = %v", cfg.Input.PasteApps)
	}
	if cfg.Toggle.Signal != "usr1" {
		t.Errorf("toggle signal = %q", cfg.Toggle.Signal)
	}
	if cfg.Capture.Output != "stdout" {
		t.Errorf("capture output = %q", cfg.Capture.Output)
	}
}

func TestFlagOnlyOneEnables(t *testing.T) {
	t.Setenv("PRINT_TEXT", "true")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.PrintText {
		t.Error(`PRINT_TEXT=true should not enable; only "1" does`)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threads", func(c *Config) { c.Engine.Threads = 0 }},
		{"bad capture backend", func(c *Config) { c.Capture.Backend = "alsa" }},
		{"empty command", func(c *Config) { c.Capture.Command = " " }},
		{"bad capture output", func(c *Config) { c.Capture.Output = "pipe" }},
		{"file output without path", func(c *Config) { c.Capture.Path = "" }},
		{"bad stop signal", func(c *Config) { c.Capture.StopSignal = "SIGKILL" }},
		{"bad output mode", func(c *Config) { c.Output.Mode = "speaker" }},
		{"bad input backend", func(c *Config) { c.Input.Backend = "wtype" }},
		{"bad focus backend", func(c *Config) { c.Focus.Backend = "hyprland" }},
		{"bad toggle signal", func(c *Config) { c.Toggle.Signal = "SIGWINCH" }},
		{"toggle on SIGTERM", func(c *Config) { c.Toggle.Signal = "TERM" }},
		{"zero queue", func(c *Config) { c.Toggle.QueueSize = 0 }},
		{"bad archive format", func(c *Config) { c.Archive.Format = "ogg" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := Validate(Default()); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/xdg/whispy/config.yaml" {
		t.Errorf("got %q", got)
	}
}
