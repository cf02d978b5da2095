package extract

import (
	"context"
	"time"

	"github.com/VitaliiLakusta/OpenCoach/internal/reminder"
)

// Extractor turns raw context text into reminder candidates.
//
// The reference time is injected so relative expressions in the notes
// ("tomorrow morning") resolve deterministically and the caller stays
// testable without wall-clock coupling.
type Extractor interface {
	Extract(ctx context.Context, text string, now time.Time) ([]reminder.Candidate, error)
}
