package clipboard

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type recorded struct {
	calls [][]string
	err   error
}

func (r *recorded) run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func TestYdotoolCommands(t *testing.T) {
	r := &recorded{}
	y := &Ydotool{run: r.run}

	if err := y.Type(context.Background(), "hello world"); err != nil {
		t.Fatal(err)
	}
	if err := y.Paste(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"ydotool", "type", "-d=8", "-H=6", "--", "hello world"},
		{"ydotool", "key", "29:1", "47:1", "47:0", "29:0"},
	}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestXdotoolCommands(t *testing.T) {
	r := &recorded{}
	x := &Xdotool{run: r.run}

	if err := x.Type(context.Background(), "-5 degrees"); err != nil {
		t.Fatal(err)
	}
	if err := x.Paste(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"xdotool", "type", "--delay", "8", "--", "-5 degrees"},
		{"xdotool", "key", "--clearmodifiers", "ctrl+v"},
	}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestInjectorErrorPropagates(t *testing.T) {
	boom := errors.New("ydotoold not running")
	y := &Ydotool{run: (&recorded{err: boom}).run}
	if err := y.Type(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestRunCommandMissingTool(t *testing.T) {
	if err := runCommand(context.Background(), "/nonexistent/ydotool"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewInjector(t *testing.T) {
	for _, backend := range []string{"", "ydotool", "xdotool"} {
		inj, err := NewInjector(backend)
		if err != nil {
			t.Fatalf("NewInjector(%q): %v", backend, err)
		}
		if backend != "" && inj.Name() != backend {
			t.Errorf("Name() = %q, want %q", inj.Name(), backend)
		}
	}
	if _, err := NewInjector("wtype"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestCharToKey(t *testing.T) {
	for _, tt := range []struct {
		c     rune
		code  int
		shift bool
		ok    bool
	}{
		{'a', 30, false, true},
		{'V', 47, true, true},
		{'0', 11, false, true},
		{'1', 2, false, true},
		{' ', 57, false, true},
		{'?', 53, true, true},
		{'.', 52, false, true},
		{'é', 0, false, false},
		{'ü', 0, false, false},
	} {
		code, shift, ok := charToKey(tt.c)
		if code != tt.code || shift != tt.shift || ok != tt.ok {
			t.Errorf("charToKey(%q) = (%d, %v, %v), want (%d, %v, %v)",
				tt.c, code, shift, ok, tt.code, tt.shift, tt.ok)
		}
	}
}

func TestKeystrokesReportsUnmappable(t *testing.T) {
	keys, skipped := keystrokes("café über")
	if len(keys) != 7 {
		t.Errorf("got %d keys, want 7", len(keys))
	}
	if string(skipped) != "éü" {
		t.Errorf("skipped = %q, want %q", string(skipped), "éü")
	}
	if keys[0] != (key{46, false}) || keys[3] != (key{57, false}) {
		t.Errorf("keys = %v", keys)
	}

	keys, skipped = keystrokes("Hi!")
	want := []key{{35, true}, {23, false}, {2, true}}
	if !reflect.DeepEqual(keys, want) || skipped != nil {
		t.Errorf("keystrokes(Hi!) = %v, %q", keys, string(skipped))
	}
}

func TestFakeClipboard(t *testing.T) {
	var c FakeClipboard
	c.Copy("one")
	c.Copy("two")
	got, _ := c.Read()
	if got != "two" {
		t.Errorf("Read() = %q, want two", got)
	}
	if h := c.History(); len(h) != 2 {
		t.Errorf("history = %v", h)
	}
}
