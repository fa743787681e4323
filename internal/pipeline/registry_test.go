package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovista/fieldops/pkg/types"
)

func TestRegistrySeededFunnel(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistry(store)

	stages, err := registry.List()
	require.NoError(t, err)
	require.Len(t, stages, 5)

	titles := make([]string, len(stages))
	for i, s := range stages {
		titles[i] = s.Title
	}
	assert.Equal(t, []string{"Lead", "Contacted", "Proposal Sent", "Negotiation", "Closed"}, titles)

	for i := 1; i < len(stages); i++ {
		assert.Greater(t, stages[i].Order, stages[i-1].Order, "positions ascend")
	}
}

func TestRegistryAddStage(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistry(store)

	stage, err := registry.AddStage("Qualified", "#26c6da")
	require.NoError(t, err)
	assert.NotEmpty(t, stage.StageID)
	assert.Equal(t, 6, stage.Order, "new stage takes position max+1")

	stages, err := registry.List()
	require.NoError(t, err)
	assert.Len(t, stages, 6)
	assert.Equal(t, "Qualified", stages[5].Title)
}

func TestRegistryUpdateStage(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistry(store)

	lead := stageByTitle(t, store, "Lead")
	lead.Title = "Prospect"
	lead.Color = "#ff0000"

	updated, err := registry.UpdateStage(lead)
	require.NoError(t, err)
	assert.Equal(t, "Prospect", updated.Title)

	fetched, err := store.Stages().Get(lead.StageID)
	require.NoError(t, err)
	assert.Equal(t, "Prospect", fetched.Title)
	assert.Equal(t, "#ff0000", fetched.Color)
}

func TestRegistryUpdateStageNotFound(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistry(store)

	_, err := registry.UpdateStage(&types.Stage{StageID: "nonexistent", Title: "X"})
	assert.ErrorIs(t, err, types.ErrStageNotFound)

	_, err = registry.UpdateStage(nil)
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestRegistryReorder(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistry(store)

	contacted := stageByTitle(t, store, "Contacted")

	stages, err := registry.Reorder(contacted.StageID, types.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, "Contacted", stages[0].Title)
	assert.Equal(t, "Lead", stages[1].Title)

	// Moving the first stage up is a no-op, not an error.
	stages, err = registry.Reorder(contacted.StageID, types.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, "Contacted", stages[0].Title)

	// Moving the last stage down is also a no-op.
	closed := stageByTitle(t, store, "Closed")
	stages, err = registry.Reorder(closed.StageID, types.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, "Closed", stages[len(stages)-1].Title)
}

func TestRegistryReorderErrors(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistry(store)

	_, err := registry.Reorder("some-id", types.Direction("sideways"))
	assert.ErrorIs(t, err, types.ErrInvalidDirection)

	_, err = registry.Reorder("nonexistent", types.DirectionUp)
	assert.ErrorIs(t, err, types.ErrStageNotFound)
}

func TestRegistryDeleteStageReassigns(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistry(store)
	registry.now = fixedClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))

	lead := stageByTitle(t, store, "Lead")
	contacted := stageByTitle(t, store, "Contacted")
	proposal := stageByTitle(t, store, "Proposal Sent")

	engine := NewOpportunities(store, nil, nil)
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine.now = fixedClock(created)

	o1, err := engine.Create(&types.Opportunity{Title: "Deal 1", StageID: contacted.StageID})
	require.NoError(t, err)
	o2, err := engine.Create(&types.Opportunity{Title: "Deal 2", StageID: contacted.StageID})
	require.NoError(t, err)
	o3, err := engine.Create(&types.Opportunity{Title: "Deal 3", StageID: proposal.StageID})
	require.NoError(t, err)

	result, err := registry.DeleteStage(contacted.StageID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Reassigned)
	assert.Equal(t, lead.StageID, result.FallbackID, "fallback is the lowest-position stage")
	assert.Len(t, result.Stages, 4)

	// Both reassigned deals landed on the fallback stage with a fresh
	// movement date; the untouched deal kept its stage and date.
	for _, id := range []string{o1.OpportunityID, o2.OpportunityID} {
		moved, err := store.Opportunities().Get(id)
		require.NoError(t, err)
		assert.Equal(t, lead.StageID, moved.StageID)
		assert.True(t, moved.LastMovementDate.After(created), "movement date refreshed on reassignment")
	}

	untouched, err := store.Opportunities().Get(o3.OpportunityID)
	require.NoError(t, err)
	assert.Equal(t, proposal.StageID, untouched.StageID)
	assert.True(t, untouched.LastMovementDate.Equal(created))

	// No opportunity in the result references the deleted stage.
	for _, o := range result.Opportunities {
		assert.NotEqual(t, contacted.StageID, o.StageID)
	}
}

func TestRegistryDeleteLastStage(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistry(store)

	stages, err := registry.List()
	require.NoError(t, err)

	// Delete stages until one remains.
	for i := 0; i < len(stages)-1; i++ {
		_, err := registry.DeleteStage(stages[i].StageID)
		require.NoError(t, err)
	}

	remaining, err := registry.List()
	require.NoError(t, err)
	require.Len(t, remaining, 1)

	_, err = registry.DeleteStage(remaining[0].StageID)
	assert.ErrorIs(t, err, types.ErrLastStage)

	// The funnel is never empty.
	after, err := registry.List()
	require.NoError(t, err)
	assert.Len(t, after, 1)
}

func TestRegistryDeleteStageNotFound(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistry(store)

	_, err := registry.DeleteStage("nonexistent")
	assert.ErrorIs(t, err, types.ErrStageNotFound)

	_, err = registry.DeleteStage("")
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestRegistryFallbackStage(t *testing.T) {
	store := newTestStore(t)
	registry := NewRegistry(store)

	fallback, err := registry.FallbackStage()
	require.NoError(t, err)
	assert.Equal(t, "Lead", fallback.Title)
}

// Racing a transition against deletion of its target stage must never leave
// an opportunity referencing the deleted stage: either the transition lands
// first and the reassignment sweeps it to the fallback, or the deletion lands
// first and the transition fails with ErrStageNotFound.
func TestRegistryDeleteStageSerializesWithTransition(t *testing.T) {
	for i := 0; i < 10; i++ {
		store := newTestStore(t)
		registry := NewRegistry(store)
		engine := NewOpportunities(store, nil, nil)

		lead := stageByTitle(t, store, "Lead")
		doomed := stageByTitle(t, store, "Contacted")

		o, err := engine.Create(&types.Opportunity{Title: "Racing deal", StageID: lead.StageID})
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		var transitionErr, deleteErr error
		go func() {
			defer wg.Done()
			_, transitionErr = engine.Transition(o.OpportunityID, doomed.StageID)
		}()
		go func() {
			defer wg.Done()
			_, deleteErr = registry.DeleteStage(doomed.StageID)
		}()
		wg.Wait()

		require.NoError(t, deleteErr)
		if transitionErr != nil {
			assert.ErrorIs(t, transitionErr, types.ErrStageNotFound)
		}

		stored, err := engine.Get(o.OpportunityID)
		require.NoError(t, err)
		stages, err := registry.List()
		require.NoError(t, err)

		found := false
		for _, s := range stages {
			if s.StageID == stored.StageID {
				found = true
				break
			}
		}
		assert.True(t, found, "opportunity references deleted stage %s", stored.StageID)
	}
}
