package reminder

import "time"

// Reminder is a single coaching reminder extracted from the user's notes.
//
// DateTime is kept as the raw ISO-8601 string produced by extraction: it is
// the natural key of a reminder within a store document and has to round-trip
// byte-for-byte, so it is never re-formatted through time.Time.
type Reminder struct {
	DateTime     string `json:"dateTime"`
	ReminderText string `json:"reminderText"`
	Completed    bool   `json:"completed,omitempty"`
}

// Time parses the reminder's timestamp.
func (r Reminder) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, r.DateTime)
}

// DueAt reports whether the reminder is pending and its time is at or before
// now. A reminder with an unparseable timestamp is never due.
func (r Reminder) DueAt(now time.Time) bool {
	if r.Completed {
		return false
	}
	t, err := r.Time()
	if err != nil {
		return false
	}
	return !t.After(now)
}

// Candidate is a reminder as produced by the extraction collaborator, before
// it has been merged into the store: no completion state yet.
type Candidate struct {
	DateTime     string `json:"dateTime"`
	ReminderText string `json:"reminderText"`
}
