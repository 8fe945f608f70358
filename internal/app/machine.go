package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/philipparndt/gotoolpath/internal/logging"
	"github.com/philipparndt/gotoolpath/pkg/gcode"
	"github.com/philipparndt/gotoolpath/pkg/journal"
	"github.com/philipparndt/gotoolpath/pkg/sequencer"
)

// Machine runs step lists over a port, journals them and maintains the
// status and response files
type Machine struct {
	app     *App
	port    sequencer.Port
	journal *journal.Journal
}

// NewMachine wraps an open port, which is closed when a run ends. journal
// may be nil.
func (a *App) NewMachine(port sequencer.Port, j *journal.Journal) *Machine {
	return &Machine{app: a, port: port, journal: j}
}

// OpenJournal opens the configured journal; an empty path returns nil
func (a *App) OpenJournal() (*journal.Journal, error) {
	if a.Config.Journal.Path == "" {
		return nil, nil
	}
	return journal.Open(a.Config.Journal.Path)
}

// Macro runs a configured macro
func (m *Machine) Macro(ctx context.Context, name string) (sequencer.Summary, error) {
	steps, err := m.app.Config.Steps(name)
	if err != nil {
		return sequencer.Summary{}, err
	}
	return m.Run(ctx, name, steps)
}

// Send streams a G-code program, one acknowledged line at a time
func (m *Machine) Send(ctx context.Context, name string, r io.Reader) (sequencer.Summary, error) {
	lines, err := gcode.ReadLines(r)
	if err != nil {
		return sequencer.Summary{}, fmt.Errorf("failed to read %s: %w", name, err)
	}

	steps := make([]sequencer.Step, 0, len(lines))
	for _, line := range lines {
		steps = append(steps, sequencer.Step{
			Code:    line,
			Expect:  "ok",
			Timeout: m.app.Config.Sequencer.Timeout,
			Quiet:   true,
		})
	}
	return m.Run(ctx, name, steps)
}

// Run executes steps. The trace and response files start empty, the status
// file reads running until the run ends and the response file receives
// whether the run was error free.
func (m *Machine) Run(ctx context.Context, name string, steps []sequencer.Step) (sequencer.Summary, error) {
	cfg := m.app.Config.Sequencer

	started, running := false, false
	defer func() {
		if started {
			return
		}
		m.closePort()
		if running {
			if err := sequencer.WriteStatus(cfg.StatusFile, false); err != nil {
				m.app.Log.Error("failed to reset status file", "error", err)
			}
		}
	}()

	if err := sequencer.ResetFile(cfg.TraceFile); err != nil {
		return sequencer.Summary{}, err
	}
	trace, err := logging.OpenTrace(m.app.Log.With("macro", name), cfg.TraceFile)
	if err != nil {
		return sequencer.Summary{}, err
	}
	defer trace.Close()

	if err := sequencer.ResetFile(cfg.ResponseFile); err != nil {
		return sequencer.Summary{}, err
	}
	if err := sequencer.WriteStatus(cfg.StatusFile, true); err != nil {
		return sequencer.Summary{}, err
	}
	running = true

	opts := []sequencer.Option{
		sequencer.WithLogger(trace.Logger),
		sequencer.WithGrace(cfg.Grace),
		sequencer.WithSettle(cfg.Settle),
	}

	var run *journal.Run
	if m.journal != nil {
		if run, err = m.journal.BeginRun(ctx, name); err != nil {
			return sequencer.Summary{}, err
		}
		opts = append(opts, sequencer.WithRecorder(run))
	}

	started = true
	seq := sequencer.New(m.port, opts...)
	summary, runErr := seq.Run(ctx, name, steps)
	closeErr := seq.Close()

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if closeErr != nil {
		errs = append(errs, fmt.Errorf("failed to close port: %w", closeErr))
	}
	if run != nil {
		// the journal records interrupted runs as well
		if err := run.Finish(context.WithoutCancel(ctx), summary); err != nil {
			errs = append(errs, err)
		}
	}
	if err := sequencer.AppendResponse(cfg.ResponseFile, summary.OK() && runErr == nil); err != nil {
		errs = append(errs, err)
	}
	if err := sequencer.WriteStatus(cfg.StatusFile, false); err != nil {
		errs = append(errs, err)
	}
	return summary, errors.Join(errs...)
}

func (m *Machine) closePort() {
	if c, ok := m.port.(io.Closer); ok {
		c.Close()
	}
}
