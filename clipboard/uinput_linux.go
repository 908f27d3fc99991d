//go:build linux && cgo

package clipboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"

	"whispy/log"
)

// Uinput types through a virtual keyboard created on /dev/uinput, so it
// needs no helper daemon but does need write access to the device.
type Uinput struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

func NewUinput() (*Uinput, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("uinput: %w (try: sudo modprobe uinput)", err)
	}
	// compositors need a moment to pick up the new device
	time.Sleep(200 * time.Millisecond)
	return &Uinput{kb: kb}, nil
}

func (u *Uinput) Name() string { return "uinput" }

func (u *Uinput) Paste(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.kb.Clear()
	u.kb.SetKeys(keybd_event.VK_V)
	u.kb.HasCTRL(true)
	defer u.kb.HasCTRL(false)
	return u.kb.Launching()
}

// Type presses keys for every character a US layout can produce. Anything
// else is left out and logged.
func (u *Uinput) Type(ctx context.Context, text string) error {
	keys, skipped := keystrokes(text)
	if len(skipped) > 0 {
		log.Warnf("uinput: no key for %q, left out of typed text", string(skipped))
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	defer u.kb.HasSHIFT(false)
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		u.kb.Clear()
		u.kb.SetKeys(k.code)
		u.kb.HasSHIFT(k.shift)
		if err := u.kb.Launching(); err != nil {
			return err
		}
		time.Sleep(8 * time.Millisecond)
	}
	return nil
}
