// Package focus reports which application currently has keyboard focus.
package focus

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Inspector returns the focused application's identifier, or "" when
// nothing is focused or the window manager does not say.
type Inspector interface {
	FocusedApp(ctx context.Context) (string, error)
}

func New(ctx context.Context, backend string) (Inspector, error) {
	switch backend {
	case "sway", "":
		return NewSway(ctx)
	case "x11":
		return NewX11(), nil
	case "none":
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown focus backend %q", backend)
	}
}

type None struct{}

func (None) FocusedApp(context.Context) (string, error) { return "", nil }

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// X11 asks xdotool for the focused window's class name.
type X11 struct {
	run runFunc
}

func NewX11() *X11 { return &X11{run: runCommand} }

func (x *X11) FocusedApp(ctx context.Context) (string, error) {
	out, err := x.run(ctx, "xdotool", "getwindowfocus", "getwindowclassname")
	if err != nil {
		return "", fmt.Errorf("xdotool getwindowclassname: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
