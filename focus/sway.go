package focus

import (
	"context"
	"fmt"

	"github.com/joshuarubin/go-sway"
)

type treeClient interface {
	GetTree(ctx context.Context) (*sway.Node, error)
}

// Sway reads the focused container from the sway IPC tree.
type Sway struct {
	client treeClient
}

func NewSway(ctx context.Context) (*Sway, error) {
	client, err := sway.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("sway ipc: %w", err)
	}
	return &Sway{client: client}, nil
}

func (s *Sway) FocusedApp(ctx context.Context) (string, error) {
	tree, err := s.client.GetTree(ctx)
	if err != nil {
		return "", fmt.Errorf("sway get_tree: %w", err)
	}
	return AppID(FindFocused(tree)), nil
}

// FindFocused walks the tree depth-first in document order (tiled children
// before floating ones) and returns the first focused node, or nil.
func FindFocused(root *sway.Node) *sway.Node {
	if root == nil {
		return nil
	}
	stack := []*sway.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Focused {
			return n
		}
		// pushed in reverse so Nodes[0] is visited next
		for i := len(n.FloatingNodes) - 1; i >= 0; i-- {
			stack = append(stack, n.FloatingNodes[i])
		}
		for i := len(n.Nodes) - 1; i >= 0; i-- {
			stack = append(stack, n.Nodes[i])
		}
	}
	return nil
}

// AppID prefers the Wayland app_id and falls back to the X11 class for
// XWayland windows.
func AppID(n *sway.Node) string {
	if n == nil {
		return ""
	}
	if n.AppID != nil && *n.AppID != "" {
		return *n.AppID
	}
	if n.WindowProperties != nil {
		return n.WindowProperties.Class
	}
	return ""
}
