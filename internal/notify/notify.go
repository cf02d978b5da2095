package notify

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/VitaliiLakusta/OpenCoach/internal/reminder"
)

// Notifier presents a due reminder to the user. Delivery is best-effort:
// the engine never blocks a cycle on presentation and a failed delivery is
// logged, not retried — the completed mark is already persisted.
type Notifier interface {
	Notify(ctx context.Context, r reminder.Reminder) error
}

// Multi fans a reminder out to several channels.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, r reminder.Reminder) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Console writes reminders to a writer. The default channel when no chat
// integration is configured.
type Console struct {
	w io.Writer
}

// NewConsole creates a console notifier writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(_ context.Context, r reminder.Reminder) error {
	_, err := fmt.Fprintf(c.w, "⏰ %s — %s\n", r.DateTime, r.ReminderText)
	if err != nil {
		return fmt.Errorf("failed to write reminder: %w", err)
	}
	return nil
}
