// Package clipboard moves text into the focused application, either through
// the system clipboard plus a paste chord or as synthesized keystrokes.
package clipboard

import cb "github.com/atotto/clipboard"

// Clipboard is the system selection. atotto/clipboard shells out to
// wl-copy/wl-paste, xclip or xsel, whichever is installed.
type Clipboard interface {
	Copy(text string) error
	Read() (string, error)
}

type System struct{}

func (System) Copy(text string) error { return cb.WriteAll(text) }

func (System) Read() (string, error) { return cb.ReadAll() }

// Unsupported reports whether no clipboard tool was found.
func Unsupported() bool { return cb.Unsupported }
