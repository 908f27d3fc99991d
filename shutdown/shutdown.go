package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Signals end the process gracefully. They are never toggle inputs.
var Signals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func Notify(ch chan os.Signal) {
	signal.Notify(ch, Signals...)
}

// Context is cancelled on the first termination signal. Call stop to
// restore default handling so a second signal kills the process outright.
func Context(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}
