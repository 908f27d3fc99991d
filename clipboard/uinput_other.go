//go:build !linux || !cgo

package clipboard

import (
	"context"
	"errors"
)

type Uinput struct{}

func NewUinput() (*Uinput, error) { return nil, errors.New("uinput is only available on linux") }

func (u *Uinput) Name() string                        { return "uinput" }
func (u *Uinput) Paste(context.Context) error         { return errors.ErrUnsupported }
func (u *Uinput) Type(context.Context, string) error { return errors.ErrUnsupported }
