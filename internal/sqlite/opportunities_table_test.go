package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovista/fieldops/pkg/types"
)

func attachedBackend(t *testing.T) *Backend {
	t.Helper()

	b := NewBackend()
	require.NoError(t, b.Attach(testConfig(t.TempDir())))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func firstStageID(t *testing.T, b *Backend) string {
	t.Helper()

	stages, err := b.Stages().Fetch()
	require.NoError(t, err)
	require.NotEmpty(t, stages)
	return stages[0].StageID
}

func TestOpportunitiesTableRoundtrip(t *testing.T) {
	b := attachedBackend(t)
	stageID := firstStageID(t, b)

	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	opp := &types.Opportunity{
		Code:       "P-0001",
		Title:      "Full season package",
		StageID:    stageID,
		ProducerID: "prod-1",
		FarmName:   "Fazenda Santa Rita",
		Safra:      "2025/26",
		ActivityGroups: []types.ActivityGroup{
			{
				Activity:    "soy",
				PropertyIDs: []string{"p1", "p2"},
				Items: []types.LineItem{
					{ItemID: "seed", Quantity: 40, PriceAtTime: 120.5},
					{ItemID: "analysis", Quantity: 200, PriceAtTime: 12},
				},
			},
		},
		TotalValue:          7220,
		ClosingProbability:  72,
		CreatedAt:           created,
		LastMovementDate:    created,
		ExpectedClosingDate: time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
		ValidityDate:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		NextContactDate:     time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		ConversationHistory: []types.EngagementNote{
			{NoteID: "n2", Timestamp: "2025-06-03T08:00:00Z", Content: "second call"},
			{NoteID: "n1", Timestamp: "2025-06-01T10:00:00Z", Content: "first call"},
		},
		Description:      "Bundle across both northern plots",
		InternalNotes:    "price sensitive",
		GeneratedContent: "Dear producer...",
	}

	id, err := b.Opportunities().Put(opp)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	loaded, err := b.Opportunities().Get(id)
	require.NoError(t, err)

	assert.Equal(t, opp.Code, loaded.Code)
	assert.Equal(t, opp.Title, loaded.Title)
	assert.Equal(t, opp.FarmName, loaded.FarmName)
	assert.Equal(t, opp.Safra, loaded.Safra)
	assert.Equal(t, opp.ActivityGroups, loaded.ActivityGroups)
	assert.Equal(t, opp.ConversationHistory, loaded.ConversationHistory)
	assert.InDelta(t, opp.TotalValue, loaded.TotalValue, 1e-9)
	assert.Equal(t, 72, loaded.ClosingProbability)
	assert.True(t, loaded.CreatedAt.Equal(created))
	assert.True(t, loaded.LastMovementDate.Equal(created))
	assert.Equal(t, "2025-09-15", loaded.ExpectedClosingDate.Format("2006-01-02"))
	assert.Equal(t, "2025-06-12", loaded.NextContactDate.Format("2006-01-02"))
	assert.Equal(t, opp.Description, loaded.Description)
	assert.Equal(t, opp.InternalNotes, loaded.InternalNotes)
	assert.Equal(t, opp.GeneratedContent, loaded.GeneratedContent)
}

func TestOpportunitiesTableZeroDates(t *testing.T) {
	b := attachedBackend(t)

	opp := &types.Opportunity{
		Title:            "Bare deal",
		Code:             "P-0001",
		StageID:          firstStageID(t, b),
		CreatedAt:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		LastMovementDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	id, err := b.Opportunities().Put(opp)
	require.NoError(t, err)

	loaded, err := b.Opportunities().Get(id)
	require.NoError(t, err)
	assert.True(t, loaded.ExpectedClosingDate.IsZero())
	assert.True(t, loaded.ValidityDate.IsZero())
	assert.True(t, loaded.NextContactDate.IsZero())
}

func TestOpportunitiesTableGetErrors(t *testing.T) {
	b := attachedBackend(t)

	_, err := b.Opportunities().Get("")
	assert.ErrorIs(t, err, types.ErrInvalidID)

	_, err = b.Opportunities().Get("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestOpportunitiesTableDelete(t *testing.T) {
	b := attachedBackend(t)

	id, err := b.Opportunities().Put(&types.Opportunity{
		Title: "Doomed", Code: "P-0001", StageID: firstStageID(t, b),
		CreatedAt: time.Now(), LastMovementDate: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, b.Opportunities().Delete(id))
	assert.ErrorIs(t, b.Opportunities().Delete(id), types.ErrNotFound)
}

func TestOpportunitiesTableNextCode(t *testing.T) {
	b := attachedBackend(t)
	stageID := firstStageID(t, b)

	code, err := b.Opportunities().NextCode()
	require.NoError(t, err)
	assert.Equal(t, "P-0001", code, "empty table starts at P-0001")

	_, err = b.Opportunities().Put(&types.Opportunity{
		Title: "One", Code: "P-0007", StageID: stageID,
		CreatedAt: time.Now(), LastMovementDate: time.Now(),
	})
	require.NoError(t, err)

	code, err = b.Opportunities().NextCode()
	require.NoError(t, err)
	assert.Equal(t, "P-0008", code, "continues past the highest stored code")
}

func TestOpportunitiesTableReassignStage(t *testing.T) {
	b := attachedBackend(t)

	stages, err := b.Stages().Fetch()
	require.NoError(t, err)
	from, to := stages[1], stages[0]

	oldDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for _, title := range []string{"A", "B"} {
		id, err := b.Opportunities().Put(&types.Opportunity{
			Title: title, Code: "P-000" + title, StageID: from.StageID,
			CreatedAt: oldDate, LastMovementDate: oldDate,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	elsewhere, err := b.Opportunities().Put(&types.Opportunity{
		Title: "C", Code: "P-000C", StageID: to.StageID,
		CreatedAt: oldDate, LastMovementDate: oldDate,
	})
	require.NoError(t, err)

	movedAt := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	moved, err := b.Opportunities().ReassignStage(from.StageID, to.StageID, movedAt)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	for _, id := range ids {
		o, err := b.Opportunities().Get(id)
		require.NoError(t, err)
		assert.Equal(t, to.StageID, o.StageID)
		assert.True(t, o.LastMovementDate.Equal(movedAt))
	}

	// Opportunities already elsewhere keep their movement date.
	o, err := b.Opportunities().Get(elsewhere)
	require.NoError(t, err)
	assert.True(t, o.LastMovementDate.Equal(oldDate))

	// Reassigning an empty stage moves nothing.
	moved, err = b.Opportunities().ReassignStage(from.StageID, to.StageID, movedAt)
	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestOpportunitiesTableFetchFilters(t *testing.T) {
	b := attachedBackend(t)

	stages, err := b.Stages().Fetch()
	require.NoError(t, err)

	put := func(title, code, safra string, probability int, stageID string, at time.Time) {
		_, err := b.Opportunities().Put(&types.Opportunity{
			Title: title, Code: code, Safra: safra,
			ClosingProbability: probability, StageID: stageID,
			CreatedAt: at, LastMovementDate: at,
		})
		require.NoError(t, err)
	}

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	put("Soy package", "P-0001", "2025/26", 85, stages[0].StageID, base)
	put("Cotton program", "P-0002", "2025/26", 30, stages[1].StageID, base.Add(time.Hour))
	put("Corn trial", "P-0003", "2026/27", 55, stages[0].StageID, base.Add(2*time.Hour))

	all, err := b.Opportunities().Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Corn trial", all[0].Title, "newest first")

	byText, err := b.Opportunities().Fetch(&types.OpportunityFilter{Text: "SOY"})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "Soy package", byText[0].Title)

	byCode, err := b.Opportunities().Fetch(&types.OpportunityFilter{Text: "P-0002"})
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, "Cotton program", byCode[0].Title)

	bySafra, err := b.Opportunities().Fetch(&types.OpportunityFilter{Safra: "2025/26"})
	require.NoError(t, err)
	assert.Len(t, bySafra, 2)

	byStage, err := b.Opportunities().Fetch(&types.OpportunityFilter{StageID: stages[0].StageID})
	require.NoError(t, err)
	assert.Len(t, byStage, 2)

	byBucket, err := b.Opportunities().Fetch(&types.OpportunityFilter{Bucket: types.BucketHigh})
	require.NoError(t, err)
	require.Len(t, byBucket, 1)
	assert.Equal(t, "Soy package", byBucket[0].Title)

	combined, err := b.Opportunities().Fetch(&types.OpportunityFilter{
		Safra:   "2025/26",
		StageID: stages[0].StageID,
	})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, "Soy package", combined[0].Title)
}
