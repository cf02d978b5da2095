package reminder

import (
	"encoding/json"
	"fmt"
	"time"
)

// Document is the persisted reminder store: the reminder list plus the
// bookkeeping the extraction and due-check cycles need between ticks.
//
// Fields written by other (possibly newer) writers that this version does
// not recognize are captured during unmarshalling and written back unchanged,
// so a read-modify-write cycle never silently drops them.
type Document struct {
	Reminders             []Reminder
	LastRun               time.Time
	LastSourceFingerprint int64
	SourceLocation        string

	extra map[string]json.RawMessage
}

// knownDocumentKeys are the JSON keys owned by this version of the schema.
var knownDocumentKeys = []string{"reminders", "lastRun", "lastSourceFingerprint", "sourceLocation"}

type documentFields struct {
	Reminders             []Reminder `json:"reminders"`
	LastRun               string     `json:"lastRun"`
	LastSourceFingerprint int64      `json:"lastSourceFingerprint"`
	SourceLocation        string     `json:"sourceLocation"`
}

// UnmarshalJSON decodes the known fields and stashes everything else.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse store document: %w", err)
	}

	var known documentFields
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("failed to parse store document fields: %w", err)
	}

	d.Reminders = known.Reminders
	d.LastSourceFingerprint = known.LastSourceFingerprint
	d.SourceLocation = known.SourceLocation

	d.LastRun = time.Time{}
	if known.LastRun != "" {
		t, err := time.Parse(time.RFC3339, known.LastRun)
		if err != nil {
			return fmt.Errorf("invalid lastRun timestamp %q: %w", known.LastRun, err)
		}
		d.LastRun = t
	}

	for _, key := range knownDocumentKeys {
		delete(raw, key)
	}
	d.extra = nil
	if len(raw) > 0 {
		d.extra = raw
	}

	return nil
}

// MarshalJSON re-emits the known fields alongside any preserved extras.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.extra)+len(knownDocumentKeys))
	for k, v := range d.extra {
		out[k] = v
	}

	lastRun := ""
	if !d.LastRun.IsZero() {
		lastRun = d.LastRun.UTC().Format(time.RFC3339)
	}

	reminders := d.Reminders
	if reminders == nil {
		reminders = []Reminder{}
	}

	known := documentFields{
		Reminders:             reminders,
		LastRun:               lastRun,
		LastSourceFingerprint: d.LastSourceFingerprint,
		SourceLocation:        d.SourceLocation,
	}

	knownJSON, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	var knownRaw map[string]json.RawMessage
	if err := json.Unmarshal(knownJSON, &knownRaw); err != nil {
		return nil, err
	}
	for k, v := range knownRaw {
		out[k] = v
	}

	return json.Marshal(out)
}
