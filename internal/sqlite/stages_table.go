// Stage table accessor.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/agrovista/fieldops/pkg/types"
)

// Compile-time interface check.
var _ types.StageTable = (*stagesTable)(nil)

// stagesTable implements types.StageTable. Deleting a stage here is a plain
// row removal; the never-empty invariant and opportunity reassignment are
// enforced by the pipeline registry, which composes Delete with
// ReassignStage.
type stagesTable struct {
	backend *Backend
}

// Get retrieves a stage by ID.
func (t *stagesTable) Get(id string) (*types.Stage, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	row := t.backend.db.QueryRow(
		"SELECT stage_id, title, position, color FROM stages WHERE stage_id = ?", id,
	)
	stage, err := hydrateStage(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting stage %s: %w", id, err)
	}
	return stage, nil
}

// Put creates or updates a stage. An empty StageID generates a new UUID v7.
// Returns the actual ID used.
func (t *stagesTable) Put(stage *types.Stage) (string, error) {
	if stage == nil {
		return "", types.ErrInvalidData
	}
	if strings.TrimSpace(stage.Title) == "" {
		return "", types.ErrEmptyTitle
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	if stage.StageID == "" {
		stage.StageID = newUUID()
	}

	_, err := t.backend.db.Exec(
		`INSERT INTO stages (stage_id, title, position, color) VALUES (?, ?, ?, ?)
		 ON CONFLICT(stage_id) DO UPDATE SET title = excluded.title,
		 position = excluded.position, color = excluded.color`,
		stage.StageID, stage.Title, stage.Order, stage.Color,
	)
	if err != nil {
		return "", fmt.Errorf("persisting stage: %w", err)
	}

	if err := persistTableJSONL(t.backend, "stages", "stages.jsonl", "position ASC"); err != nil {
		return "", fmt.Errorf("persisting stages.jsonl: %w", err)
	}
	return stage.StageID, nil
}

// Delete removes a stage. Returns ErrNotFound if no stage has the ID.
func (t *stagesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	res, err := t.backend.db.Exec("DELETE FROM stages WHERE stage_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting stage: %w", err)
	}
	if affected == 0 {
		return types.ErrNotFound
	}

	if err := persistTableJSONL(t.backend, "stages", "stages.jsonl", "position ASC"); err != nil {
		return fmt.Errorf("persisting stages.jsonl: %w", err)
	}
	return nil
}

// SwapOrder exchanges the positions of two stages in one transaction and
// rewrites stages.jsonl once. Returns ErrNotFound if either stage is missing;
// in that case nothing changes.
func (t *stagesTable) SwapOrder(aID, bID string) error {
	if aID == "" || bID == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	tx, err := t.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning order swap: %w", err)
	}
	defer tx.Rollback()

	readOrder := func(id string) (int, error) {
		var order int
		err := tx.QueryRow("SELECT position FROM stages WHERE stage_id = ?", id).Scan(&order)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, types.ErrNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("reading stage position: %w", err)
		}
		return order, nil
	}
	aOrder, err := readOrder(aID)
	if err != nil {
		return err
	}
	bOrder, err := readOrder(bID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("UPDATE stages SET position = ? WHERE stage_id = ?", bOrder, aID); err != nil {
		return fmt.Errorf("swapping stage position: %w", err)
	}
	if _, err := tx.Exec("UPDATE stages SET position = ? WHERE stage_id = ?", aOrder, bID); err != nil {
		return fmt.Errorf("swapping stage position: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing order swap: %w", err)
	}

	if err := persistTableJSONL(t.backend, "stages", "stages.jsonl", "position ASC"); err != nil {
		return fmt.Errorf("persisting stages.jsonl: %w", err)
	}
	return nil
}

// Fetch returns all stages in ascending display order.
func (t *stagesTable) Fetch() ([]*types.Stage, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := t.backend.db.Query(
		"SELECT stage_id, title, position, color FROM stages ORDER BY position ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("fetching stages: %w", err)
	}
	defer rows.Close()

	stages := []*types.Stage{}
	for rows.Next() {
		stage, err := hydrateStage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating stage: %w", err)
		}
		stages = append(stages, stage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stages: %w", err)
	}
	return stages, nil
}

// hydrateStage converts one stages row into a *types.Stage.
func hydrateStage(scan func(...any) error) (*types.Stage, error) {
	var s types.Stage
	var color sql.NullString
	if err := scan(&s.StageID, &s.Title, &s.Order, &color); err != nil {
		return nil, err
	}
	s.Color = color.String
	return &s, nil
}
