package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovista/fieldops/pkg/types"
)

func TestEngagementAppendNote(t *testing.T) {
	store := newTestStore(t)
	engine := NewOpportunities(store, nil, nil)
	log := NewEngagement(store)

	o, err := engine.Create(&types.Opportunity{Title: "Deal"})
	require.NoError(t, err)

	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	log.now = fixedClock(first)
	updated, err := log.AppendNote(o.OpportunityID, "First call, producer interested")
	require.NoError(t, err)
	require.Len(t, updated.ConversationHistory, 1)
	assert.Equal(t, "2025-06-01T10:00:00Z", updated.ConversationHistory[0].Timestamp,
		"timestamp formatted once at append")

	second := time.Date(2025, 6, 3, 16, 30, 0, 0, time.UTC)
	log.now = fixedClock(second)
	updated, err = log.AppendNote(o.OpportunityID, "Sent revised quote")
	require.NoError(t, err)
	require.Len(t, updated.ConversationHistory, 2)

	// Newest first; the earlier note is byte-identical to what was stored.
	assert.Equal(t, "Sent revised quote", updated.ConversationHistory[0].Content)
	assert.Equal(t, "2025-06-03T16:30:00Z", updated.ConversationHistory[0].Timestamp)
	assert.Equal(t, "First call, producer interested", updated.ConversationHistory[1].Content)
	assert.Equal(t, "2025-06-01T10:00:00Z", updated.ConversationHistory[1].Timestamp)

	stored, err := engine.Get(o.OpportunityID)
	require.NoError(t, err)
	assert.Equal(t, updated.ConversationHistory, stored.ConversationHistory)
}

func TestEngagementAppendNoteErrors(t *testing.T) {
	store := newTestStore(t)
	engine := NewOpportunities(store, nil, nil)
	log := NewEngagement(store)

	o, err := engine.Create(&types.Opportunity{Title: "Deal"})
	require.NoError(t, err)

	_, err = log.AppendNote(o.OpportunityID, "")
	assert.ErrorIs(t, err, types.ErrEmptyContent)

	_, err = log.AppendNote(o.OpportunityID, "   \t ")
	assert.ErrorIs(t, err, types.ErrEmptyContent)

	_, err = log.AppendNote("nonexistent", "hello")
	assert.ErrorIs(t, err, types.ErrNotFound)

	// No note landed from the failed appends.
	stored, err := engine.Get(o.OpportunityID)
	require.NoError(t, err)
	assert.Empty(t, stored.ConversationHistory)
}

func TestEngagementScheduleNextContact(t *testing.T) {
	store := newTestStore(t)
	engine := NewOpportunities(store, nil, nil)
	log := NewEngagement(store)

	o, err := engine.Create(&types.Opportunity{Title: "Deal"})
	require.NoError(t, err)

	date := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	updated, err := log.ScheduleNextContact(o.OpportunityID, date)
	require.NoError(t, err)
	assert.True(t, updated.NextContactDate.Equal(date))

	// Rescheduling overwrites the single field.
	later := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	updated, err = log.ScheduleNextContact(o.OpportunityID, later)
	require.NoError(t, err)
	assert.True(t, updated.NextContactDate.Equal(later))

	// A zero date clears the schedule.
	updated, err = log.ScheduleNextContact(o.OpportunityID, time.Time{})
	require.NoError(t, err)
	assert.True(t, updated.NextContactDate.IsZero())

	assert.Empty(t, updated.ConversationHistory, "scheduling does not touch the history")

	_, err = log.ScheduleNextContact("nonexistent", date)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
