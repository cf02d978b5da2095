package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	t1 = "2025-01-15T09:00:00Z"
	t2 = "2025-01-15T14:30:00Z"
	t3 = "2025-01-16T08:00:00Z"
)

func TestMerge_EmptyStore(t *testing.T) {
	fresh := []Candidate{
		{DateTime: t1, ReminderText: "A"},
		{DateTime: t2, ReminderText: "B"},
	}

	merged := Merge(nil, fresh)

	require.Len(t, merged, 2)
	assert.Equal(t, Reminder{DateTime: t1, ReminderText: "A"}, merged[0])
	assert.Equal(t, Reminder{DateTime: t2, ReminderText: "B"}, merged[1])
	assert.False(t, merged[0].Completed)
	assert.False(t, merged[1].Completed)
}

func TestMerge_CompletedIsFrozen(t *testing.T) {
	existing := []Reminder{
		{DateTime: t1, ReminderText: "A", Completed: true},
	}
	fresh := []Candidate{
		{DateTime: t1, ReminderText: "A-rewritten"},
		{DateTime: t2, ReminderText: "B"},
	}

	merged := Merge(existing, fresh)

	require.Len(t, merged, 2)
	// The completed reminder keeps its original text and stays completed,
	// even though the fresh batch still mentions the same time slot.
	assert.Equal(t, Reminder{DateTime: t1, ReminderText: "A", Completed: true}, merged[0])
	assert.Equal(t, Reminder{DateTime: t2, ReminderText: "B"}, merged[1])
}

func TestMerge_CompletedRetainedStalePendingDropped(t *testing.T) {
	existing := []Reminder{
		{DateTime: t1, ReminderText: "A", Completed: true},
		{DateTime: t3, ReminderText: "C"},
	}
	fresh := []Candidate{
		{DateTime: t2, ReminderText: "B"},
	}

	merged := Merge(existing, fresh)

	require.Len(t, merged, 2)
	assert.Equal(t, Reminder{DateTime: t2, ReminderText: "B"}, merged[0])
	assert.Equal(t, Reminder{DateTime: t1, ReminderText: "A", Completed: true}, merged[1])

	for _, r := range merged {
		assert.NotEqual(t, t3, r.DateTime, "stale pending reminder should decay")
	}
}

func TestMerge_PendingTextUpdates(t *testing.T) {
	existing := []Reminder{
		{DateTime: t1, ReminderText: "old wording"},
	}
	fresh := []Candidate{
		{DateTime: t1, ReminderText: "new wording"},
	}

	merged := Merge(existing, fresh)

	require.Len(t, merged, 1)
	assert.Equal(t, "new wording", merged[0].ReminderText)
	assert.False(t, merged[0].Completed)
}

func TestMerge_DuplicateFreshLastWins(t *testing.T) {
	fresh := []Candidate{
		{DateTime: t1, ReminderText: "first"},
		{DateTime: t2, ReminderText: "other"},
		{DateTime: t1, ReminderText: "second"},
	}

	merged := Merge(nil, fresh)

	require.Len(t, merged, 2)
	assert.Equal(t, "second", merged[0].ReminderText)
	assert.Equal(t, "other", merged[1].ReminderText)
}

func TestMerge_CompletionIsMonotonic(t *testing.T) {
	completedSet := func(rs []Reminder) map[string]bool {
		out := map[string]bool{}
		for _, r := range rs {
			if r.Completed {
				out[r.DateTime] = true
			}
		}
		return out
	}

	store := []Reminder{
		{DateTime: t1, ReminderText: "A", Completed: true},
		{DateTime: t2, ReminderText: "B", Completed: true},
		{DateTime: t3, ReminderText: "C"},
	}

	batches := [][]Candidate{
		{{DateTime: t1, ReminderText: "A'"}},
		{},
		{{DateTime: t2, ReminderText: "B'"}, {DateTime: t3, ReminderText: "C'"}},
		{{DateTime: t3, ReminderText: "C''"}},
	}

	for _, fresh := range batches {
		before := completedSet(store)
		store = Merge(store, fresh)
		after := completedSet(store)

		for dt := range before {
			assert.True(t, after[dt], "completed set lost %s", dt)
		}
	}
}

func TestShouldExtract(t *testing.T) {
	assert.True(t, ShouldExtract(100, nil), "no document yet means extract")

	doc := &Document{LastSourceFingerprint: 100}
	assert.False(t, ShouldExtract(100, doc))
	assert.True(t, ShouldExtract(101, doc))
}
