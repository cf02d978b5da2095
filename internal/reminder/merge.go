package reminder

// Merge reconciles a freshly extracted batch against the reminders already in
// the store.
//
// Completion is monotonic: once a dateTime slot is completed, that reminder is
// frozen — its text is kept and it can never revert to pending, no matter what
// the fresh batch says about the slot. Pending reminders mirror the fresh
// batch exactly, so pending entries the source stopped asserting decay out.
// Completed reminders absent from the fresh batch are retained. Duplicate
// dateTimes within one fresh batch collapse last-one-wins.
func Merge(existing []Reminder, fresh []Candidate) []Reminder {
	byTime := make(map[string]Reminder, len(existing))
	for _, r := range existing {
		byTime[r.DateTime] = r
	}

	merged := make([]Reminder, 0, len(fresh))
	index := make(map[string]int, len(fresh))

	for _, c := range fresh {
		out := Reminder{DateTime: c.DateTime, ReminderText: c.ReminderText}
		if prev, ok := byTime[c.DateTime]; ok && prev.Completed {
			out = prev
		}
		if i, dup := index[c.DateTime]; dup {
			merged[i] = out
			continue
		}
		index[c.DateTime] = len(merged)
		merged = append(merged, out)
	}

	for _, r := range existing {
		if !r.Completed {
			continue
		}
		if _, ok := index[r.DateTime]; !ok {
			index[r.DateTime] = len(merged)
			merged = append(merged, r)
		}
	}

	return merged
}

// ShouldExtract reports whether the source document changed since the last
// successful extraction. A nil document means no extraction has ever run for
// this source.
func ShouldExtract(fingerprint int64, doc *Document) bool {
	return doc == nil || doc.LastSourceFingerprint != fingerprint
}
