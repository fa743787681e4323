package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agrovista/fieldops/pkg/types"
)

// Registry owns the ordered list of pipeline stages: insertion, reordering,
// and safe deletion with opportunity reassignment. Mutating operations take
// the store-wide write lock, so a stage delete-and-reassign sequence is a
// single unit from any caller's point of view and no opportunity write can
// slip a reference to the deleted stage in between.
type Registry struct {
	mu    *sync.Mutex
	store types.Store
	now   func() time.Time
}

// NewRegistry creates a stage registry over the given store.
func NewRegistry(store types.Store) *Registry {
	return &Registry{
		mu:    writeLock(store),
		store: store,
		now:   time.Now,
	}
}

// List returns all stages in ascending display order.
func (r *Registry) List() ([]*types.Stage, error) {
	return r.store.Stages().Fetch()
}

// AddStage appends a new stage at the end of the funnel. The new stage takes
// position max+1.
func (r *Registry) AddStage(title, color string) (*types.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stages, err := r.store.Stages().Fetch()
	if err != nil {
		return nil, fmt.Errorf("fetching stages: %w", err)
	}

	maxOrder := 0
	for _, s := range stages {
		if s.Order > maxOrder {
			maxOrder = s.Order
		}
	}

	stage := &types.Stage{Title: title, Order: maxOrder + 1, Color: color}
	if _, err := r.store.Stages().Put(stage); err != nil {
		return nil, fmt.Errorf("adding stage: %w", err)
	}
	return stage, nil
}

// UpdateStage replaces a stage's title, color, and position in place.
// Returns ErrStageNotFound if the stage does not exist.
func (r *Registry) UpdateStage(stage *types.Stage) (*types.Stage, error) {
	if stage == nil || stage.StageID == "" {
		return nil, types.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getStage(stage.StageID); err != nil {
		return nil, err
	}
	if _, err := r.store.Stages().Put(stage); err != nil {
		return nil, fmt.Errorf("updating stage: %w", err)
	}
	return stage, nil
}

// Reorder swaps a stage's position with its neighbor in the given direction.
// Moving the first stage up or the last stage down is a no-op, not an error.
// Returns the refreshed stage list.
func (r *Registry) Reorder(stageID string, direction types.Direction) ([]*types.Stage, error) {
	if !direction.Valid() {
		return nil, types.ErrInvalidDirection
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stages, err := r.store.Stages().Fetch()
	if err != nil {
		return nil, fmt.Errorf("fetching stages: %w", err)
	}

	idx := -1
	for i, s := range stages {
		if s.StageID == stageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, types.ErrStageNotFound
	}

	neighbor := idx - 1
	if direction == types.DirectionDown {
		neighbor = idx + 1
	}
	if neighbor < 0 || neighbor >= len(stages) {
		return stages, nil // edge move is a no-op
	}

	if err := r.store.Stages().SwapOrder(stages[idx].StageID, stages[neighbor].StageID); err != nil {
		return nil, fmt.Errorf("reordering stage: %w", err)
	}

	stages[idx].Order, stages[neighbor].Order = stages[neighbor].Order, stages[idx].Order
	sort.Slice(stages, func(i, j int) bool { return stages[i].Order < stages[j].Order })
	return stages, nil
}

// DeleteResult carries both refreshed collections after a stage deletion, so
// callers never observe opportunities pointing at a stage that no longer
// exists.
type DeleteResult struct {
	Stages        []*types.Stage
	Opportunities []*types.Opportunity
	Reassigned    int
	FallbackID    string
}

// DeleteStage removes a stage. Every opportunity on the deleted stage is
// first reassigned to the fallback stage (the remaining stage with the
// smallest position) with a fresh movement date; the stage row is removed
// only after the reassignment lands. Deleting the sole remaining stage
// returns ErrLastStage and changes nothing.
func (r *Registry) DeleteStage(stageID string) (*DeleteResult, error) {
	if stageID == "" {
		return nil, types.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stages, err := r.store.Stages().Fetch()
	if err != nil {
		return nil, fmt.Errorf("fetching stages: %w", err)
	}

	var target *types.Stage
	var fallback *types.Stage
	for _, s := range stages {
		if s.StageID == stageID {
			target = s
			continue
		}
		if fallback == nil || s.Order < fallback.Order {
			fallback = s
		}
	}
	if target == nil {
		return nil, types.ErrStageNotFound
	}
	if fallback == nil {
		return nil, types.ErrLastStage
	}

	moved, err := r.store.Opportunities().ReassignStage(stageID, fallback.StageID, r.now())
	if err != nil {
		return nil, fmt.Errorf("reassigning opportunities: %w", err)
	}

	if err := r.store.Stages().Delete(stageID); err != nil {
		return nil, fmt.Errorf("deleting stage: %w", err)
	}

	updatedStages, err := r.store.Stages().Fetch()
	if err != nil {
		return nil, fmt.Errorf("fetching stages: %w", err)
	}
	updatedOpps, err := r.store.Opportunities().Fetch(nil)
	if err != nil {
		return nil, fmt.Errorf("fetching opportunities: %w", err)
	}

	return &DeleteResult{
		Stages:        updatedStages,
		Opportunities: updatedOpps,
		Reassigned:    moved,
		FallbackID:    fallback.StageID,
	}, nil
}

// getStage returns the stage or ErrStageNotFound.
func (r *Registry) getStage(id string) (*types.Stage, error) {
	stage, err := r.store.Stages().Get(id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrStageNotFound
		}
		return nil, err
	}
	return stage, nil
}

// FallbackStage returns the stage with the smallest position. Returns
// ErrStageNotFound only if the registry is (impossibly) empty.
func (r *Registry) FallbackStage() (*types.Stage, error) {
	stages, err := r.store.Stages().Fetch()
	if err != nil {
		return nil, fmt.Errorf("fetching stages: %w", err)
	}
	if len(stages) == 0 {
		return nil, types.ErrStageNotFound
	}
	return stages[0], nil
}
