package focus

import (
	"context"
	"errors"
	"testing"

	"github.com/joshuarubin/go-sway"
)

func strp(s string) *string { return &s }

type fakeTree struct {
	root *sway.Node
	err  error
}

func (f fakeTree) GetTree(context.Context) (*sway.Node, error) { return f.root, f.err }

func TestFindFocused(t *testing.T) {
	firefox := &sway.Node{Name: "firefox", Focused: true, AppID: strp("firefox")}
	term := &sway.Node{Name: "foot", AppID: strp("foot")}
	floating := &sway.Node{Name: "float", Focused: true, AppID: strp("pavucontrol")}

	tests := []struct {
		name string
		root *sway.Node
		want string
	}{
		{"nil tree", nil, ""},
		{"root focused", &sway.Node{Name: "root", Focused: true}, "root"},
		{"nested", &sway.Node{Name: "root", Nodes: []*sway.Node{
			{Name: "ws1", Nodes: []*sway.Node{term}},
			{Name: "ws2", Nodes: []*sway.Node{firefox}},
		}}, "firefox"},
		{"tiled before floating", &sway.Node{Name: "root", Nodes: []*sway.Node{
			{Name: "ws", FloatingNodes: []*sway.Node{floating}, Nodes: []*sway.Node{firefox}},
		}}, "firefox"},
		{"first in document order", &sway.Node{Name: "root", Nodes: []*sway.Node{
			{Name: "a", Nodes: []*sway.Node{{Name: "a1", Focused: true}}},
			{Name: "b", Focused: true},
		}}, "a1"},
		{"floating only", &sway.Node{Name: "root", Nodes: []*sway.Node{
			{Name: "ws", FloatingNodes: []*sway.Node{floating}},
		}}, "float"},
		{"none focused", &sway.Node{Name: "root", Nodes: []*sway.Node{term}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ""
			if n := FindFocused(tt.root); n != nil {
				got = n.Name
			}
			if got != tt.want {
				t.Errorf("FindFocused = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindFocusedDeepTree(t *testing.T) {
	root := &sway.Node{Name: "root"}
	n := root
	for i := 0; i < 100000; i++ {
		child := &sway.Node{}
		n.Nodes = []*sway.Node{child}
		n = child
	}
	n.Focused = true
	n.Name = "leaf"
	if got := FindFocused(root); got == nil || got.Name != "leaf" {
		t.Fatal("deep focused node not found")
	}
}

func TestAppID(t *testing.T) {
	tests := []struct {
		name string
		node *sway.Node
		want string
	}{
		{"nil", nil, ""},
		{"wayland", &sway.Node{AppID: strp("firefox")}, "firefox"},
		{"xwayland", &sway.Node{WindowProperties: &sway.WindowProperties{Class: "Firefox"}}, "Firefox"},
		{"empty app id falls back", &sway.Node{AppID: strp(""), WindowProperties: &sway.WindowProperties{Class: "Gimp"}}, "Gimp"},
		{"nothing", &sway.Node{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AppID(tt.node); got != tt.want {
				t.Errorf("AppID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSwayFocusedApp(t *testing.T) {
	root := &sway.Node{Nodes: []*sway.Node{{Focused: true, AppID: strp("firefox")}}}
	s := &Sway{client: fakeTree{root: root}}
	got, err := s.FocusedApp(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "firefox" {
		t.Errorf("got %q, want firefox", got)
	}

	s = &Sway{client: fakeTree{err: errors.New("ipc closed")}}
	if _, err := s.FocusedApp(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestX11FocusedApp(t *testing.T) {
	var gotArgs []string
	x := &X11{run: func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte("Navigator\n"), nil
	}}
	got, err := x.FocusedApp(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "Navigator" {
		t.Errorf("got %q, want Navigator", got)
	}
	if len(gotArgs) != 3 || gotArgs[0] != "xdotool" || gotArgs[2] != "getwindowclassname" {
		t.Errorf("ran %v", gotArgs)
	}
}

func TestNewBackends(t *testing.T) {
	for _, backend := range []string{"x11", "none"} {
		if _, err := New(context.Background(), backend); err != nil {
			t.Errorf("New(%q): %v", backend, err)
		}
	}
	if _, err := New(context.Background(), "wayfire"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
