package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovista/fieldops/pkg/types"
)

func TestStagesTablePutGet(t *testing.T) {
	b := attachedBackend(t)

	stage := &types.Stage{Title: "Qualified", Order: 10, Color: "#26c6da"}
	id, err := b.Stages().Put(stage)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, stage.StageID, "generated ID written back")

	loaded, err := b.Stages().Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Qualified", loaded.Title)
	assert.Equal(t, 10, loaded.Order)
	assert.Equal(t, "#26c6da", loaded.Color)

	// Put with an existing ID upserts.
	loaded.Title = "Requalified"
	_, err = b.Stages().Put(loaded)
	require.NoError(t, err)

	again, err := b.Stages().Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Requalified", again.Title)
}

func TestStagesTableFetchOrder(t *testing.T) {
	b := attachedBackend(t)

	stages, err := b.Stages().Fetch()
	require.NoError(t, err)
	for i := 1; i < len(stages); i++ {
		assert.Greater(t, stages[i].Order, stages[i-1].Order)
	}
}

func TestStagesTableDelete(t *testing.T) {
	b := attachedBackend(t)

	id, err := b.Stages().Put(&types.Stage{Title: "Temp", Order: 99})
	require.NoError(t, err)

	require.NoError(t, b.Stages().Delete(id))

	_, err = b.Stages().Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, b.Stages().Delete(id), types.ErrNotFound)
}

func TestStagesTableSwapOrder(t *testing.T) {
	b := attachedBackend(t)

	stages, err := b.Stages().Fetch()
	require.NoError(t, err)
	first, second := stages[0], stages[1]

	require.NoError(t, b.Stages().SwapOrder(first.StageID, second.StageID))

	swappedFirst, err := b.Stages().Get(first.StageID)
	require.NoError(t, err)
	swappedSecond, err := b.Stages().Get(second.StageID)
	require.NoError(t, err)
	assert.Equal(t, second.Order, swappedFirst.Order)
	assert.Equal(t, first.Order, swappedSecond.Order)

	// A missing stage fails the whole swap and changes nothing.
	err = b.Stages().SwapOrder(first.StageID, "nonexistent")
	assert.ErrorIs(t, err, types.ErrNotFound)

	unchanged, err := b.Stages().Get(first.StageID)
	require.NoError(t, err)
	assert.Equal(t, swappedFirst.Order, unchanged.Order)

	assert.ErrorIs(t, b.Stages().SwapOrder("", second.StageID), types.ErrInvalidID)
}
