package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/philipparndt/gotoolpath/pkg/sequencer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordRun(t *testing.T) {
	j := openMemory(t)
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return clock }

	ctx := context.Background()
	run, err := j.BeginRun(ctx, "probe")
	require.NoError(t, err)
	assert.Equal(t, "probe", run.Macro)

	var recorder sequencer.Recorder = run
	require.NoError(t, recorder.RecordStep(sequencer.StepResult{
		Step:    sequencer.Step{Code: "G90", Message: "Absolute mode"},
		Status:  sequencer.StatusOK,
		Reply:   "ok",
		Elapsed: 120 * time.Millisecond,
	}))
	require.NoError(t, recorder.RecordStep(sequencer.StepResult{
		Step:   sequencer.Step{Code: "G38.2 Z-20 F100", Message: "Probe"},
		Status: sequencer.StatusFailed,
		Reply:  "<nothing>",
		Err:    sequencer.ErrTimeout,
	}))

	clock = clock.Add(5 * time.Second)
	require.NoError(t, run.Finish(ctx, sequencer.Summary{Steps: 2, Errors: 1}))

	runs, err := j.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "probe", runs[0].Macro)
	assert.True(t, runs[0].Started.Equal(clock.Add(-5*time.Second)))
	assert.True(t, runs[0].Finished.Equal(clock))
	assert.Equal(t, sequencer.Summary{Steps: 2, Errors: 1}, runs[0].Summary)

	steps, err := j.Steps(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, 1, steps[0].Seq)
	assert.Equal(t, "G90", steps[0].Code)
	assert.Equal(t, sequencer.StatusOK, steps[0].Status)
	assert.Equal(t, 120*time.Millisecond, steps[0].Elapsed)
	assert.Empty(t, steps[0].Error)

	assert.Equal(t, "Probe", steps[1].Message)
	assert.Equal(t, sequencer.StatusFailed, steps[1].Status)
	assert.Equal(t, "<nothing>", steps[1].Reply)
	assert.Equal(t, sequencer.ErrTimeout.Error(), steps[1].Error)
}

func TestRunsNewestFirst(t *testing.T) {
	j := openMemory(t)
	ctx := context.Background()

	for _, name := range []string{"home", "probe", "park"} {
		_, err := j.BeginRun(ctx, name)
		require.NoError(t, err)
	}

	runs, err := j.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "park", runs[0].Macro)
	assert.Equal(t, "probe", runs[1].Macro)
	assert.True(t, runs[0].Finished.IsZero(), "unfinished runs have no end time")
}

func TestStepsUnknownRun(t *testing.T) {
	j := openMemory(t)
	_, err := j.Steps(context.Background(), 42)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestJournalPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	run, err := j.BeginRun(ctx, "home")
	require.NoError(t, err)
	require.NoError(t, run.Finish(ctx, sequencer.Summary{Steps: 1}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	runs, err := j.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "home", runs[0].Macro)
	assert.Equal(t, 1, runs[0].Summary.Steps)
}
