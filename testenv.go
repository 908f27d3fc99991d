package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"whispy/audio"
	"whispy/beep"
	"whispy/log"
	"whispy/output"
	"whispy/toggle"
	"whispy/transcriber"
)

// runTestMode replays audioPath as the microphone and reads toggle commands
// from in: TOGGLE, WAIT (until the next cycle not yet waited on finishes),
// SLEEP <ms> and QUIT.
func runTestMode(ctx context.Context, in io.Reader, audioPath string, engine transcriber.Engine, disp *output.Dispatcher, extra EventSink) int {
	beep.Disable()

	rec, err := audio.NewFakeRecorderFromFile(audioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading audio: %v\n", err)
		return 1
	}

	events := eventFanout{logEvents{}}
	if extra != nil {
		events = append(events, extra)
	}
	c := newController(rec, engine, disp, events)
	// one signal per finished cycle, however many events it produced
	cycles := make(chan struct{}, toggle.DefaultQueueSize)
	c.settled = func() {
		select {
		case cycles <- struct{}{}:
		default:
		}
	}
	listener := toggle.NewListener(toggle.DefaultQueueSize)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopDone := make(chan struct{})
	go func() {
		c.run(ctx, listener.Events())
		close(loopDone)
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "TOGGLE":
			if !listener.Deliver() {
				log.Debug("toggle dropped, queue full")
			}
		case cmd == "WAIT":
			select {
			case <-cycles:
			case <-ctx.Done():
			}
		case strings.HasPrefix(cmd, "SLEEP "):
			if ms, err := strconv.Atoi(strings.TrimSpace(cmd[6:])); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		case cmd == "QUIT":
			cancel()
			<-loopDone
			log.SessionEnd(c.passes)
			return 0
		}
	}
	cancel()
	<-loopDone
	log.SessionEnd(c.passes)
	return 0
}
