// Package toggle turns an OS signal into a stream of toggle events.
package toggle

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
)

const DefaultQueueSize = 100

type Event struct{}

// Listener forwards signals into a bounded queue. Delivery never blocks:
// when the queue is full the event is dropped and counted.
type Listener struct {
	events  chan Event
	sigs    chan os.Signal
	done    chan struct{}
	dropped atomic.Uint64
	once    sync.Once
}

func NewListener(size int) *Listener {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Listener{
		events: make(chan Event, size),
		sigs:   make(chan os.Signal, size),
		done:   make(chan struct{}),
	}
}

// Listen subscribes to sig and forwards every notification until Stop.
func (l *Listener) Listen(sig ...os.Signal) {
	signal.Notify(l.sigs, sig...)
	go func() {
		for {
			select {
			case <-l.sigs:
				l.Deliver()
			case <-l.done:
				return
			}
		}
	}()
}

// Deliver enqueues one event and reports whether it fit.
func (l *Listener) Deliver() bool {
	select {
	case l.events <- Event{}:
		return true
	default:
		l.dropped.Add(1)
		return false
	}
}

func (l *Listener) Events() <-chan Event { return l.events }

func (l *Listener) Dropped() uint64 { return l.dropped.Load() }

func (l *Listener) Stop() {
	l.once.Do(func() {
		signal.Stop(l.sigs)
		close(l.done)
	})
}

var signalNames = map[string]syscall.Signal{
	"HUP":  syscall.SIGHUP,
	"INT":  syscall.SIGINT,
	"QUIT": syscall.SIGQUIT,
	"TERM": syscall.SIGTERM,
	"USR1": syscall.SIGUSR1,
	"USR2": syscall.SIGUSR2,
}

// ParseSignal accepts names like "SIGUSR2", "usr2" or "Sigint".
func ParseSignal(name string) (syscall.Signal, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "SIG")
	if sig, ok := signalNames[key]; ok {
		return sig, nil
	}
	return 0, fmt.Errorf("unknown signal %q", name)
}

// SignalName is the inverse of ParseSignal without the SIG prefix, as
// kill(1) expects it.
func SignalName(sig syscall.Signal) string {
	for name, s := range signalNames {
		if s == sig {
			return name
		}
	}
	return strconv.Itoa(int(sig))
}
