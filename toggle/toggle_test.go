package toggle

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestDeliverDropsWhenFull(t *testing.T) {
	l := NewListener(3)
	for i := 0; i < 5; i++ {
		l.Deliver()
	}
	if got := len(l.Events()); got != 3 {
		t.Errorf("queued = %d, want 3", got)
	}
	if got := l.Dropped(); got != 2 {
		t.Errorf("Dropped() = %d, want 2", got)
	}
}

func TestDeliverNeverBlocks(t *testing.T) {
	l := NewListener(1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			l.Deliver()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Deliver blocked on a full queue")
	}
}

func TestDefaultQueueSize(t *testing.T) {
	l := NewListener(0)
	if cap(l.events) != DefaultQueueSize {
		t.Errorf("capacity = %d, want %d", cap(l.events), DefaultQueueSize)
	}
}

func TestListenForwardsSignal(t *testing.T) {
	l := NewListener(10)
	l.Listen(syscall.SIGUSR2)
	defer l.Stop()

	for i := 0; i < 2; i++ {
		if err := syscall.Kill(os.Getpid(), syscall.SIGUSR2); err != nil {
			t.Fatal(err)
		}
		select {
		case <-l.Events():
		case <-time.After(2 * time.Second):
			t.Fatalf("signal %d not delivered", i)
		}
	}
}

func TestStopIdempotent(t *testing.T) {
	l := NewListener(1)
	l.Listen(syscall.SIGUSR1)
	l.Stop()
	l.Stop()
}

func TestParseSignal(t *testing.T) {
	for _, tt := range []struct {
		in      string
		want    syscall.Signal
		wantErr bool
	}{
		{"SIGUSR2", syscall.SIGUSR2, false},
		{"usr1", syscall.SIGUSR1, false},
		{" SigInt ", syscall.SIGINT, false},
		{"TERM", syscall.SIGTERM, false},
		{"hup", syscall.SIGHUP, false},
		{"SIGKILL", 0, true},
		{"", 0, true},
	} {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSignal(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignalName(t *testing.T) {
	for _, name := range []string{"USR1", "USR2", "HUP"} {
		sig, err := ParseSignal(name)
		if err != nil {
			t.Fatal(err)
		}
		if got := SignalName(sig); got != name {
			t.Errorf("SignalName(%v) = %q, want %q", sig, got, name)
		}
	}
}
