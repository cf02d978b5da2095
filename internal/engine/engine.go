package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/VitaliiLakusta/OpenCoach/internal/extract"
	"github.com/VitaliiLakusta/OpenCoach/internal/reminder"
	"github.com/VitaliiLakusta/OpenCoach/internal/source"
)

// SkipReason explains why an extraction cycle made no changes.
type SkipReason string

const (
	// SkipUnchanged means the source fingerprint matched the last
	// successful extraction.
	SkipUnchanged SkipReason = "unchanged"

	// SkipNoContext means the watched document does not exist. Not an
	// error: there is simply nothing to extract from yet.
	SkipNoContext SkipReason = "no-context"
)

// CycleResult is the structured outcome of one extraction cycle.
type CycleResult struct {
	Skipped SkipReason `json:"skipped,omitempty"`
	Updated bool       `json:"updated,omitempty"`
	LastRun time.Time  `json:"lastRun,omitzero"`
}

// Engine drives the reminder lifecycle: change detection, extraction,
// merge, due detection and acknowledgement. All failures are returned as
// structured outcomes or errors; nothing here is fatal to the process.
type Engine struct {
	store     *reminder.Store
	source    source.Source
	extractor extract.Extractor
	now       func() time.Time
	log       zerolog.Logger
}

// New creates an engine over the given collaborators.
func New(store *reminder.Store, src source.Source, extractor extract.Extractor, log zerolog.Logger) *Engine {
	return &Engine{
		store:     store,
		source:    src,
		extractor: extractor,
		now:       time.Now,
		log:       log,
	}
}

// SetClock overrides the wall-clock source. Tests use it to pin "now".
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// RunExtractionCycle runs one detect → extract → merge → persist pass.
//
// A missing source document or an unchanged fingerprint is a skip, not an
// error. An extraction failure (including timeout) aborts the cycle without
// touching the store, so the next tick retries against the same content.
func (e *Engine) RunExtractionCycle(ctx context.Context) (CycleResult, error) {
	snap, err := e.source.Read()
	if errors.Is(err, source.ErrMissingSource) {
		return CycleResult{Skipped: SkipNoContext}, nil
	}
	if err != nil {
		return CycleResult{}, err
	}

	doc, err := e.store.Load(ctx)
	if err != nil && !errors.Is(err, reminder.ErrNotFound) {
		return CycleResult{}, err
	}
	if !reminder.ShouldExtract(snap.Fingerprint, doc) {
		return CycleResult{Skipped: SkipUnchanged}, nil
	}

	now := e.now()
	fresh, err := e.extractor.Extract(ctx, snap.Text, now)
	if err != nil {
		// lastSourceFingerprint stays put: the next tick sees the document
		// as still changed and retries extraction.
		return CycleResult{}, fmt.Errorf("extraction failed: %w", err)
	}

	// Merge against the document as it is at write time, not as it was
	// before the (slow) extraction call.
	updated, err := e.store.Update(ctx, func(d *reminder.Document) error {
		d.Reminders = reminder.Merge(d.Reminders, fresh)
		d.LastRun = now
		d.LastSourceFingerprint = snap.Fingerprint
		d.SourceLocation = e.source.Location()
		return nil
	})
	if err != nil {
		return CycleResult{}, fmt.Errorf("failed to persist merged reminders: %w", err)
	}

	e.log.Debug().
		Int("reminders", len(updated.Reminders)).
		Int64("fingerprint", updated.LastSourceFingerprint).
		Msg("extraction cycle committed")

	return CycleResult{Updated: true, LastRun: updated.LastRun}, nil
}

// RunDueCheck returns every pending reminder whose time has passed and marks
// each completed within the same store write.
//
// When the write fails the due list is still returned alongside the error:
// the caller should notify anyway, accepting a small duplicate-delivery risk
// across a crash window rather than silently dropping a due reminder.
func (e *Engine) RunDueCheck(ctx context.Context) ([]reminder.Reminder, error) {
	now := e.now()

	var due []reminder.Reminder
	_, err := e.store.Update(ctx, func(d *reminder.Document) error {
		due = reminder.DetectDue(d, now)
		if len(due) == 0 {
			return reminder.ErrNoChange
		}
		return nil
	})
	if err != nil {
		e.log.Error().Err(err).Int("due", len(due)).Msg("failed to persist due-check result")
		return due, err
	}
	return due, nil
}

// Acknowledge marks the reminders with the given dateTime keys as completed.
// Unknown and already-completed keys are no-ops, so the operation is
// idempotent. Returns the number of reminders newly marked.
func (e *Engine) Acknowledge(ctx context.Context, dateTimes []string) (int, error) {
	want := make(map[string]bool, len(dateTimes))
	for _, dt := range dateTimes {
		want[dt] = true
	}

	marked := 0
	_, err := e.store.Update(ctx, func(d *reminder.Document) error {
		marked = 0
		for i, r := range d.Reminders {
			if want[r.DateTime] && !r.Completed {
				d.Reminders[i].Completed = true
				marked++
			}
		}
		if marked == 0 {
			return reminder.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to persist acknowledgement: %w", err)
	}
	return marked, nil
}

// Reminders returns the current reminder list, empty when the store has not
// been created yet.
func (e *Engine) Reminders(ctx context.Context) ([]reminder.Reminder, error) {
	doc, err := e.store.Load(ctx)
	if errors.Is(err, reminder.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Reminders, nil
}
