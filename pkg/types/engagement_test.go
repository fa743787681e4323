package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrependNoteNewestFirst(t *testing.T) {
	o := &Opportunity{Title: "Deal"}

	o.PrependNote(EngagementNote{NoteID: "n1", Timestamp: "2025-06-01T10:00:00Z", Content: "first call"})
	o.PrependNote(EngagementNote{NoteID: "n2", Timestamp: "2025-06-02T10:00:00Z", Content: "sent quote"})
	o.PrependNote(EngagementNote{NoteID: "n3", Timestamp: "2025-06-03T10:00:00Z", Content: "follow-up"})

	assert.Len(t, o.ConversationHistory, 3)
	assert.Equal(t, "n3", o.ConversationHistory[0].NoteID, "newest note comes first")
	assert.Equal(t, "n2", o.ConversationHistory[1].NoteID)
	assert.Equal(t, "n1", o.ConversationHistory[2].NoteID)

	// Existing entries are untouched by later appends.
	assert.Equal(t, "first call", o.ConversationHistory[2].Content)
	assert.Equal(t, "2025-06-01T10:00:00Z", o.ConversationHistory[2].Timestamp)
}

func TestNextContactDue(t *testing.T) {
	today := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		next time.Time
		want bool
	}{
		{
			name: "unset date is never due",
			next: time.Time{},
			want: false,
		},
		{
			name: "past date is due",
			next: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "same day is due regardless of time",
			next: time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "tomorrow is not due",
			next: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Opportunity{NextContactDate: tt.next}
			assert.Equal(t, tt.want, o.NextContactDue(today))
		})
	}
}
