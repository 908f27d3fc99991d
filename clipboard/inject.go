package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Injector synthesizes input into whatever window has focus.
type Injector interface {
	Name() string
	Type(ctx context.Context, text string) error
	Paste(ctx context.Context) error
}

func NewInjector(backend string) (Injector, error) {
	switch backend {
	case "ydotool", "":
		return NewYdotool(), nil
	case "xdotool":
		return NewXdotool(), nil
	case "uinput":
		return NewUinput()
	default:
		return nil, fmt.Errorf("unknown input backend %q", backend)
	}
}

type runFunc func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Ydotool drives the ydotoold daemon, which works on any Wayland compositor.
type Ydotool struct {
	run runFunc
}

func NewYdotool() *Ydotool { return &Ydotool{run: runCommand} }

func (y *Ydotool) Name() string { return "ydotool" }

func (y *Ydotool) Type(ctx context.Context, text string) error {
	return y.run(ctx, "ydotool", "type", "-d=8", "-H=6", "--", text)
}

// Paste sends Ctrl+V as raw evdev codes (29 = LEFTCTRL, 47 = V).
func (y *Ydotool) Paste(ctx context.Context) error {
	return y.run(ctx, "ydotool", "key", "29:1", "47:1", "47:0", "29:0")
}

type Xdotool struct {
	run runFunc
}

func NewXdotool() *Xdotool { return &Xdotool{run: runCommand} }

func (x *Xdotool) Name() string { return "xdotool" }

func (x *Xdotool) Type(ctx context.Context, text string) error {
	return x.run(ctx, "xdotool", "type", "--delay", "8", "--", text)
}

func (x *Xdotool) Paste(ctx context.Context) error {
	return x.run(ctx, "xdotool", "key", "--clearmodifiers", "ctrl+v")
}
