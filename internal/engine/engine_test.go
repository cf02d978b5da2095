package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaliiLakusta/OpenCoach/internal/reminder"
	"github.com/VitaliiLakusta/OpenCoach/internal/source"
)

type fakeSource struct {
	snapshot source.Snapshot
	err      error
	location string
}

func (f *fakeSource) Read() (source.Snapshot, error) {
	if f.err != nil {
		return source.Snapshot{}, f.err
	}
	return f.snapshot, nil
}

func (f *fakeSource) Location() string {
	return f.location
}

type fakeExtractor struct {
	candidates []reminder.Candidate
	err        error
	calls      int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ time.Time) ([]reminder.Candidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func newTestEngine(t *testing.T, src *fakeSource, ex *fakeExtractor) *Engine {
	t.Helper()
	store := reminder.NewStore(reminder.NewFileBackend(filepath.Join(t.TempDir(), "reminders.json")))
	t.Cleanup(func() { _ = store.Close() })
	return New(store, src, ex, zerolog.Nop())
}

func TestRunExtractionCycle_NoContext(t *testing.T) {
	src := &fakeSource{err: source.ErrMissingSource}
	ex := &fakeExtractor{}
	eng := newTestEngine(t, src, ex)

	result, err := eng.RunExtractionCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SkipNoContext, result.Skipped)
	assert.Zero(t, ex.calls)

	// A missing source leaves the store uncreated.
	reminders, err := eng.Reminders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestRunExtractionCycle_FingerprintSkip(t *testing.T) {
	src := &fakeSource{
		snapshot: source.Snapshot{Text: "run at 9", Fingerprint: 100},
		location: "/notes/context.md",
	}
	ex := &fakeExtractor{candidates: []reminder.Candidate{
		{DateTime: "2099-01-15T09:00:00Z", ReminderText: "run"},
	}}
	eng := newTestEngine(t, src, ex)
	ctx := context.Background()

	result, err := eng.RunExtractionCycle(ctx)
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.False(t, result.LastRun.IsZero())
	assert.Equal(t, 1, ex.calls)

	// Same fingerprint: the collaborator must not be invoked again.
	result, err = eng.RunExtractionCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, SkipUnchanged, result.Skipped)
	assert.Equal(t, 1, ex.calls)

	// Changed fingerprint: extraction runs again.
	src.snapshot.Fingerprint = 101
	result, err = eng.RunExtractionCycle(ctx)
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.Equal(t, 2, ex.calls)
}

func TestRunExtractionCycle_FailureLeavesFingerprint(t *testing.T) {
	src := &fakeSource{snapshot: source.Snapshot{Text: "x", Fingerprint: 100}}
	ex := &fakeExtractor{err: errors.New("model timed out")}
	eng := newTestEngine(t, src, ex)
	ctx := context.Background()

	_, err := eng.RunExtractionCycle(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, ex.calls)

	// The store was never touched, so the next tick retries the same content.
	reminders, err := eng.Reminders(ctx)
	require.NoError(t, err)
	assert.Empty(t, reminders)

	ex.err = nil
	ex.candidates = []reminder.Candidate{{DateTime: "2099-01-15T09:00:00Z", ReminderText: "run"}}

	result, err := eng.RunExtractionCycle(ctx)
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.Equal(t, 2, ex.calls)
}

func TestRunExtractionCycle_AccessError(t *testing.T) {
	src := &fakeSource{err: errors.New("permission denied")}
	ex := &fakeExtractor{}
	eng := newTestEngine(t, src, ex)

	_, err := eng.RunExtractionCycle(context.Background())
	require.Error(t, err)
	assert.Zero(t, ex.calls)
}

func TestRunDueCheck_AtMostOnce(t *testing.T) {
	src := &fakeSource{
		snapshot: source.Snapshot{Text: "x", Fingerprint: 1},
		location: "/notes",
	}
	ex := &fakeExtractor{candidates: []reminder.Candidate{
		{DateTime: "2025-01-15T09:00:00Z", ReminderText: "past"},
		{DateTime: "2099-01-15T09:00:00Z", ReminderText: "future"},
	}}
	eng := newTestEngine(t, src, ex)
	eng.SetClock(func() time.Time {
		return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	})
	ctx := context.Background()

	_, err := eng.RunExtractionCycle(ctx)
	require.NoError(t, err)

	due, err := eng.RunDueCheck(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "past", due[0].ReminderText)
	assert.False(t, due[0].Completed, "returned copy is pre-mutation")

	// Second check with no time change: nothing due.
	due, err = eng.RunDueCheck(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)

	// The fired reminder is persisted as completed.
	reminders, err := eng.Reminders(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.True(t, reminders[0].Completed)
	assert.False(t, reminders[1].Completed)
}

func TestRunDueCheck_EmptyStore(t *testing.T) {
	eng := newTestEngine(t, &fakeSource{}, &fakeExtractor{})

	due, err := eng.RunDueCheck(context.Background())
	require.NoError(t, err)
	assert.Empty(t, due)

	// A due check must not create the store; that happens lazily on the
	// first successful extraction.
	reminders, err := eng.Reminders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestAcknowledge_Idempotent(t *testing.T) {
	src := &fakeSource{snapshot: source.Snapshot{Text: "x", Fingerprint: 1}}
	ex := &fakeExtractor{candidates: []reminder.Candidate{
		{DateTime: "2099-01-15T09:00:00Z", ReminderText: "A"},
		{DateTime: "2099-01-16T09:00:00Z", ReminderText: "B"},
	}}
	eng := newTestEngine(t, src, ex)
	ctx := context.Background()

	_, err := eng.RunExtractionCycle(ctx)
	require.NoError(t, err)

	marked, err := eng.Acknowledge(ctx, []string{"2099-01-15T09:00:00Z", "2099-01-17T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, 1, marked, "unknown keys are ignored")

	marked, err = eng.Acknowledge(ctx, []string{"2099-01-15T09:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, 0, marked, "re-acknowledging is a no-op")
}

func TestCompletionSurvivesReExtraction(t *testing.T) {
	src := &fakeSource{snapshot: source.Snapshot{Text: "x", Fingerprint: 1}}
	ex := &fakeExtractor{candidates: []reminder.Candidate{
		{DateTime: "2025-01-15T09:00:00Z", ReminderText: "standup"},
	}}
	eng := newTestEngine(t, src, ex)
	eng.SetClock(func() time.Time {
		return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	})
	ctx := context.Background()

	_, err := eng.RunExtractionCycle(ctx)
	require.NoError(t, err)

	due, err := eng.RunDueCheck(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)

	// The source changes but still mentions the fired slot: the reminder
	// must not be resurrected as pending.
	src.snapshot.Fingerprint = 2
	ex.candidates = []reminder.Candidate{
		{DateTime: "2025-01-15T09:00:00Z", ReminderText: "standup (edited)"},
	}

	_, err = eng.RunExtractionCycle(ctx)
	require.NoError(t, err)

	due, err = eng.RunDueCheck(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)

	reminders, err := eng.Reminders(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].Completed)
	assert.Equal(t, "standup", reminders[0].ReminderText)
}
