package audio

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestFakeRecorderQueue(t *testing.T) {
	rec := NewFakeRecorder(Buffer{9, 9, 9, 9})
	rec.Queue(Buffer{1, 1, 1, 1})

	for i, want := range []Buffer{{1, 1, 1, 1}, {9, 9, 9, 9}} {
		sess, err := rec.Start(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		got, err := sess.Stop()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("session %d = %v, want %v", i, got, want)
		}
	}
	if rec.Starts() != 2 {
		t.Errorf("Starts() = %d, want 2", rec.Starts())
	}
	if rec.MaxConcurrent() != 1 {
		t.Errorf("MaxConcurrent() = %d, want 1", rec.MaxConcurrent())
	}
}

func TestFakeRecorderFailures(t *testing.T) {
	rec := NewFakeRecorder(nil)
	boom := errors.New("boom")

	rec.FailStart(boom)
	if _, err := rec.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Start err = %v, want boom", err)
	}

	rec.FailStart(nil)
	rec.FailStop(boom)
	sess, err := rec.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Stop(); !errors.Is(err, boom) {
		t.Fatalf("Stop err = %v, want boom", err)
	}
	if _, err := sess.Stop(); err == nil {
		t.Fatal("second Stop should fail")
	}
}
