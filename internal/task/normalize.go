package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const isoDate = "2006-01-02"

// MalformedTaskError reports a raw record that cannot be normalized.
type MalformedTaskError struct {
	Index  int
	Title  string
	Reason string
}

func (e *MalformedTaskError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("malformed task at index %d (%q): %s", e.Index, e.Title, e.Reason)
	}
	return fmt.Sprintf("malformed task at index %d: %s", e.Index, e.Reason)
}

// Normalizer converts raw records into NormalizedTask values. Due dates are
// rendered in the calendar of loc.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer returns a normalizer for loc; nil means time.Local.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// Normalize converts one raw record. It fails only when the record has no id.
func (n *Normalizer) Normalize(raw RawTask) (NormalizedTask, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return NormalizedTask{}, &MalformedTaskError{Index: -1, Title: raw.Title, Reason: "missing _id"}
	}

	return NormalizedTask{
		RawTask:         raw,
		Assignee:        resolveAssignee(raw),
		ProgressPercent: Classify(raw.Status).Progress(),
		DueDateISO:      n.formatDueDate(raw.DueDate),
	}, nil
}

// NormalizeAll normalizes a batch, skipping malformed records. Relative order
// of the surviving tasks is preserved.
func (n *Normalizer) NormalizeAll(raws []RawTask) ([]NormalizedTask, []*MalformedTaskError) {
	tasks := make([]NormalizedTask, 0, len(raws))
	var skipped []*MalformedTaskError
	for i, raw := range raws {
		t, err := n.Normalize(raw)
		var merr *MalformedTaskError
		if errors.As(err, &merr) {
			merr.Index = i
			skipped = append(skipped, merr)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, skipped
}

func resolveAssignee(raw RawTask) Assignee {
	a := Assignee{
		Username: raw.AssignedToUsername,
		UserID:   raw.AssignedToUserID,
		Initials: DefaultInitials,
	}
	if a.Username == "" {
		a.Username = UnknownUsername
	} else {
		r, _ := utf8.DecodeRuneInString(a.Username)
		a.Initials = string(unicode.ToUpper(r))
	}
	if a.UserID == "" {
		a.UserID = UnassignedID
	}
	return a
}

// formatDueDate renders a store timestamp as YYYY-MM-DD in the normalizer's
// calendar. Absent or unparseable dates yield "".
func (n *Normalizer) formatDueDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, ok := n.parseDueDate(raw)
	if !ok {
		return ""
	}
	return t.In(n.loc).Format(isoDate)
}

func (n *Normalizer) parseDueDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	// Date-only values are UTC midnight, zone-less date-times are local.
	if t, err := time.Parse(isoDate, raw); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, n.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
