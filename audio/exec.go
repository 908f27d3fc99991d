package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/mattn/go-shellwords"

	"whispy/log"
)

type OutputMode string

const (
	OutputFile   OutputMode = "file"
	OutputStdout OutputMode = "stdout"
)

const DefaultCommand = "pw-record --format=f32 --rate=16000 --channels=1"

type ExecConfig struct {
	Command    string
	Output     OutputMode
	Path       string // capture file, or the side file for Keep in stdout mode
	StopSignal syscall.Signal
	Keep       bool
}

// ExecRecorder captures audio by running an external tool such as pw-record
// and interrupting it when the session stops.
type ExecRecorder struct {
	argv []string
	cfg  ExecConfig
	pid  PIDRegister
	kill func(pid int, sig syscall.Signal) error
}

func NewExecRecorder(cfg ExecConfig) (*ExecRecorder, error) {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	argv, err := shellwords.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse capture command: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("capture command is empty")
	}
	switch cfg.Output {
	case OutputFile, OutputStdout:
	case "":
		cfg.Output = OutputFile
	default:
		return nil, fmt.Errorf("unknown capture output %q", cfg.Output)
	}
	if cfg.Path == "" && (cfg.Output == OutputFile || cfg.Keep) {
		return nil, errors.New("capture path is required")
	}
	if cfg.StopSignal == 0 {
		cfg.StopSignal = syscall.SIGINT
	}
	return &ExecRecorder{argv: argv, cfg: cfg, kill: syscall.Kill}, nil
}

func (r *ExecRecorder) Name() string { return r.argv[0] }

// PID returns the process id of the running capture tool, or 0.
func (r *ExecRecorder) PID() int { return r.pid.Load() }

type captureResult struct {
	buf Buffer
	err error
}

type execSession struct {
	rec      *ExecRecorder
	pid      int
	proc     *os.Process
	stopping atomic.Bool
	exited   chan struct{}
	done     chan captureResult
}

func (r *ExecRecorder) Start(ctx context.Context) (Session, error) {
	args := append([]string{}, r.argv[1:]...)
	var stdout, stderr bytes.Buffer

	cmd := exec.Command(r.argv[0])
	switch r.cfg.Output {
	case OutputFile:
		// a stale file from a crashed run must not be mistaken for this session's audio
		if err := os.Remove(r.cfg.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale capture file: %w", err)
		}
		args = append(args, r.cfg.Path)
	case OutputStdout:
		args = append(args, "-")
		cmd.Stdout = &stdout
	}
	cmd.Args = append(cmd.Args, args...)
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", r.argv[0], err)
	}
	r.pid.Store(cmd.Process.Pid)

	s := &execSession{
		rec:    r,
		pid:    cmd.Process.Pid,
		proc:   cmd.Process,
		exited: make(chan struct{}),
		done:   make(chan captureResult, 1),
	}

	go func() {
		err := cmd.Wait()
		// the pid is reaped and may be reused from here on
		r.pid.ClearIf(s.pid)
		close(s.exited)
		if err != nil && !s.stoppedBySignal(err) {
			r.discard()
			msg := strings.TrimSpace(stderr.String())
			s.done <- captureResult{err: fmt.Errorf("%s exited: %w: %s", r.argv[0], err, msg)}
			return
		}
		buf, err := r.collect(stdout.Bytes())
		s.done <- captureResult{buf: buf, err: err}
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.interrupt()
		case <-s.exited:
		}
	}()

	return s, nil
}

func (r *ExecRecorder) collect(stdout []byte) (Buffer, error) {
	switch r.cfg.Output {
	case OutputFile:
		data, err := os.ReadFile(r.cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("read capture file: %w", err)
		}
		if !r.cfg.Keep {
			if err := os.Remove(r.cfg.Path); err != nil {
				return nil, fmt.Errorf("remove capture file: %w", err)
			}
		}
		return Buffer(data), nil
	default:
		buf := Buffer(bytes.Clone(stdout))
		if r.cfg.Keep {
			if err := os.WriteFile(r.cfg.Path, buf, 0644); err != nil {
				return nil, fmt.Errorf("keep audio: %w", err)
			}
		}
		return buf, nil
	}
}

// discard removes whatever a failed capture left in the capture file.
func (r *ExecRecorder) discard() {
	if r.cfg.Output != OutputFile || r.cfg.Keep {
		return
	}
	if err := os.Remove(r.cfg.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("remove capture file: %v", err)
	}
}

// stoppedBySignal reports whether the tool died from the signal we sent,
// which counts as a clean stop for tools that do not trap it.
func (s *execSession) stoppedBySignal(err error) bool {
	if !s.stopping.Load() {
		return false
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == s.rec.cfg.StopSignal
}

func (s *execSession) interrupt() error {
	select {
	case <-s.exited:
		return nil
	default:
	}
	pid := s.rec.pid.Load()
	if pid <= 0 {
		return nil
	}
	s.stopping.Store(true)
	if err := s.rec.kill(pid, s.rec.cfg.StopSignal); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("signal capture process %d: %w", pid, err)
	}
	return nil
}

// Stop always reaps the tool before returning. If the stop signal cannot be
// delivered the process is killed and its audio dropped.
func (s *execSession) Stop() (Buffer, error) {
	if err := s.interrupt(); err != nil {
		if kerr := s.proc.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			log.Warnf("kill capture process %d: %v", s.pid, kerr)
		}
		<-s.done
		s.rec.pid.ClearIf(s.pid)
		return nil, err
	}
	res := <-s.done
	s.rec.pid.ClearIf(s.pid)
	return res.buf, res.err
}
