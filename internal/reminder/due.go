package reminder

import "time"

// DetectDue returns pre-mutation copies of every pending reminder whose time
// has passed and, in the same mutation, marks those entries completed in doc.
//
// Marking at detection time rather than after delivery is what keeps
// notifications at-most-once: a crash or slow notification layer between
// detection and presentation cannot cause a re-delivery on the next tick.
func DetectDue(doc *Document, now time.Time) []Reminder {
	var due []Reminder
	for i, r := range doc.Reminders {
		if r.DueAt(now) {
			due = append(due, r)
			doc.Reminders[i].Completed = true
		}
	}
	return due
}
