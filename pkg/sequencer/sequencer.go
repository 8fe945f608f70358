package sequencer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Port is the link to the machine. go.bug.st/serial ports satisfy it.
type Port interface {
	io.ReadWriter
	ResetInputBuffer() error
}

// Sequencer sends steps to the machine one at a time and waits for their
// acknowledgement. Once a step fails, all following steps are skipped until
// Reset is called.
type Sequencer struct {
	port     Port
	log      *slog.Logger
	grace    time.Duration
	settle   time.Duration
	recorder Recorder

	lines chan string
	done  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	summary Summary
	readErr error
}

// Option configures a Sequencer
type Option func(*Sequencer)

// WithLogger sets the logger receiving the step trace
func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) { s.log = l }
}

// WithGrace extends every step timeout by d
func WithGrace(d time.Duration) Option {
	return func(s *Sequencer) { s.grace = d }
}

// WithSettle sets the pause between sending a code and reading replies
func WithSettle(d time.Duration) Option {
	return func(s *Sequencer) { s.settle = d }
}

// WithRecorder reports every step result to r
func WithRecorder(r Recorder) Option {
	return func(s *Sequencer) { s.recorder = r }
}

// New starts reading lines from port. Close stops the reader.
func New(port Port, opts ...Option) *Sequencer {
	s := &Sequencer{
		port:   port,
		log:    slog.New(slog.DiscardHandler),
		grace:  5 * time.Second,
		settle: 300 * time.Millisecond,
		lines:  make(chan string, 64),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.readLines()
	return s
}

// readLines splits the port input into lines. Serial ports configured with a
// read timeout return (0, nil) when idle, which is not an error.
func (s *Sequencer) readLines() {
	defer s.wg.Done()
	defer close(s.lines)

	buf := make([]byte, 256)
	var pending []byte
	for {
		n, err := s.port.Read(buf)
		pending = append(pending, buf[:n]...)
		for {
			i := bytes.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			line := string(bytes.TrimRight(pending[:i], "\r"))
			pending = pending[i+1:]
			select {
			case s.lines <- line:
			case <-s.done:
				return
			}
		}

		if err != nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			return
		}
		select {
		case <-s.done:
			return
		default:
		}
	}
}

// Close stops the reader and closes the port when it is an io.Closer
func (s *Sequencer) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)

	var err error
	if c, ok := s.port.(io.Closer); ok {
		err = c.Close()
	}
	s.wg.Wait()
	return err
}

// Summary returns the counters since the last Reset
func (s *Sequencer) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Reset clears the counters so a new macro can run after a failed one
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = Summary{}
}

// flush drops everything the machine sent before the next code
func (s *Sequencer) flush() error {
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to flush input: %w", err)
	}
	for {
		select {
		case _, ok := <-s.lines:
			if !ok {
				return nil
			}
		default:
			return nil
		}
	}
}

// Macro sends one step and waits until a reply matches step.Expect. It
// returns the matching reply. Timeouts count as errors, or as warnings for
// steps marked Warning.
func (s *Sequencer) Macro(ctx context.Context, step Step) (string, error) {
	start := time.Now()
	reply, status, err := s.macro(ctx, step)

	s.mu.Lock()
	s.summary.Steps++
	switch status {
	case StatusFailed:
		s.summary.Errors++
	case StatusWarning:
		s.summary.Warnings++
	case StatusSkipped:
		s.summary.Skipped++
	}
	s.mu.Unlock()

	if s.recorder != nil {
		result := StepResult{Step: step, Status: status, Reply: reply, Elapsed: time.Since(start), Err: err}
		if rerr := s.recorder.RecordStep(result); rerr != nil {
			s.log.Warn("failed to record step", "code", step.Code, "error", rerr)
		}
	}
	return reply, err
}

func (s *Sequencer) macro(ctx context.Context, step Step) (string, Status, error) {
	if s.Summary().Errors > 0 {
		s.log.Info(step.label() + ": Skipped")
		return "", StatusSkipped, ErrSkipped
	}

	if err := s.flush(); err != nil {
		return "", StatusFailed, err
	}

	deadline := time.NewTimer(step.Timeout + s.grace)
	defer deadline.Stop()

	if _, err := io.WriteString(s.port, step.Code+"\r\n"); err != nil {
		s.log.Error(step.label()+": Failed", "code", step.Code, "error", err)
		return "", StatusFailed, fmt.Errorf("failed to send %q: %w", step.Code, err)
	}
	level := slog.LevelInfo
	if step.Quiet {
		level = slog.LevelDebug
	}
	s.log.Log(ctx, level, step.label(), "code", step.Code)

	if err := sleep(ctx, s.settle); err != nil {
		return "", StatusFailed, err
	}

	last := ""
	for {
		select {
		case <-ctx.Done():
			return last, StatusFailed, ctx.Err()

		case line, ok := <-s.lines:
			if !ok {
				s.mu.Lock()
				err := s.readErr
				s.mu.Unlock()
				s.log.Error(step.label()+": Failed (port closed)", "code", step.Code, "error", err)
				if err != nil && !errors.Is(err, io.EOF) {
					return last, StatusFailed, fmt.Errorf("%w: %w", ErrClosed, err)
				}
				return last, StatusFailed, ErrClosed
			}
			s.log.Debug("reply", "code", step.Code, "line", line)
			if !step.matches(line) {
				last = line
				continue
			}
			if err := sleep(ctx, step.Delay); err != nil {
				return line, StatusFailed, err
			}
			return line, StatusOK, nil

		case <-deadline.C:
			if last == "" {
				last = "<nothing>"
			}
			if step.Warning {
				s.log.Warn(step.label()+": Warning!", "code", step.Code, "expected", step.Expect)
				return last, StatusWarning, fmt.Errorf("%w: %s", ErrWarning, step.Code)
			}
			s.log.Error(step.label()+": Failed ("+last+")", "code", step.Code, "expected", step.Expect)
			return last, StatusFailed, fmt.Errorf("%w: %s expected %q, received %q", ErrTimeout, step.Code, step.Expect, last)
		}
	}
}

// Run sends all steps of a macro and returns the counters. Steps after a
// failure are reported as skipped. Only cancellation of ctx ends the run
// early.
func (s *Sequencer) Run(ctx context.Context, name string, steps []Step) (Summary, error) {
	s.log.Info("starting macro", "macro", name, "steps", len(steps))
	for _, step := range steps {
		if _, err := s.Macro(ctx, step); err != nil && ctx.Err() != nil {
			return s.Summary(), ctx.Err()
		}
	}

	summary := s.Summary()
	if summary.OK() {
		s.log.Info(summary.String(), "macro", name, "warnings", summary.Warnings)
	} else {
		s.log.Error(summary.String(), "macro", name)
	}
	return summary, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
