package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/VitaliiLakusta/OpenCoach/internal/engine"
	"github.com/VitaliiLakusta/OpenCoach/internal/notify"
)

// Scheduler drives the engine with two independent timers: one for
// extraction cycles, one for due checks. The loops never overlap themselves
// (a tick that finds the previous one still running is skipped) but may
// interleave with each other freely; the store serializes their writes.
type Scheduler struct {
	engine   *engine.Engine
	notifier notify.Notifier
	log      zerolog.Logger

	extractEvery time.Duration
	dueEvery     time.Duration

	// changes is an optional push trigger (file watcher); a signal runs the
	// extraction cycle immediately instead of waiting for the next tick.
	changes <-chan struct{}

	extractBusy atomic.Bool
	dueBusy     atomic.Bool
}

// New creates a scheduler over the engine and notifier.
func New(eng *engine.Engine, notifier notify.Notifier, extractEvery, dueEvery time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		engine:       eng,
		notifier:     notifier,
		log:          log,
		extractEvery: extractEvery,
		dueEvery:     dueEvery,
	}
}

// TriggerOn makes change signals from ch run the extraction cycle
// immediately, in addition to the periodic ticks.
func (s *Scheduler) TriggerOn(ch <-chan struct{}) {
	s.changes = ch
}

// Run blocks and drives both loops until ctx is cancelled. Each loop ticks
// immediately on start.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.extractEvery <= 0 || s.dueEvery <= 0 {
		return fmt.Errorf("scheduler intervals must be positive, got extract=%s due=%s", s.extractEvery, s.dueEvery)
	}

	s.log.Info().
		Dur("extract_every", s.extractEvery).
		Dur("due_every", s.dueEvery).
		Msg("scheduler started")

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		s.extractLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.dueLoop(ctx)
	}()

	wg.Wait()
	s.log.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) extractLoop(ctx context.Context) {
	s.extractTick(ctx)

	ticker := time.NewTicker(s.extractEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.extractTick(ctx)
		case <-s.changes:
			s.extractTick(ctx)
		}
	}
}

func (s *Scheduler) dueLoop(ctx context.Context) {
	s.dueTick(ctx)

	ticker := time.NewTicker(s.dueEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dueTick(ctx)
		}
	}
}

func (s *Scheduler) extractTick(ctx context.Context) {
	if !s.extractBusy.CompareAndSwap(false, true) {
		return
	}
	defer s.extractBusy.Store(false)

	result, err := s.engine.RunExtractionCycle(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("extraction cycle failed")
		return
	}

	if result.Skipped != "" {
		s.log.Debug().Str("reason", string(result.Skipped)).Msg("extraction skipped")
		return
	}
	s.log.Info().Time("last_run", result.LastRun).Msg("reminders updated")
}

func (s *Scheduler) dueTick(ctx context.Context) {
	if !s.dueBusy.CompareAndSwap(false, true) {
		return
	}
	defer s.dueBusy.Store(false)

	// A persistence failure still yields the due list; RunDueCheck logged
	// the failure and the reminders below should reach the user regardless.
	due, _ := s.engine.RunDueCheck(ctx)

	for _, r := range due {
		go func() {
			if err := s.notifier.Notify(ctx, r); err != nil {
				s.log.Error().Err(err).Str("date_time", r.DateTime).Msg("notification failed")
			}
		}()
	}
}
