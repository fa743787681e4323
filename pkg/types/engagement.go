package types

import (
	"errors"
	"time"
)

// EngagementNote is one dated entry in an opportunity's conversation history.
// The timestamp is formatted once at append time and stored verbatim; it is
// never recomputed on read. Notes are immutable after creation.
type EngagementNote struct {
	NoteID    string `json:"note_id"`
	Timestamp string `json:"timestamp"` // RFC 3339, set at append.
	Content   string `json:"content"`
}

// NoteTimestampFormat is the layout applied once when a note is appended.
const NoteTimestampFormat = time.RFC3339

// ErrEmptyContent rejects notes with no content.
var ErrEmptyContent = errors.New("note content must not be empty")

// PrependNote puts note at the head of the conversation history, keeping the
// newest-first ordering. Existing notes are untouched.
func (o *Opportunity) PrependNote(note EngagementNote) {
	history := make([]EngagementNote, 0, len(o.ConversationHistory)+1)
	history = append(history, note)
	history = append(history, o.ConversationHistory...)
	o.ConversationHistory = history
}

// NextContactDue reports whether the scheduled next contact is due: the date
// is set and falls on or before today. Comparison is date-granular.
func (o *Opportunity) NextContactDue(today time.Time) bool {
	if o.NextContactDate.IsZero() {
		return false
	}
	next := truncateToDay(o.NextContactDate)
	return !next.After(truncateToDay(today))
}

// truncateToDay drops the time-of-day component in UTC.
func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
