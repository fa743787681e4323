// Visit table accessor.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agrovista/fieldops/pkg/types"
)

// Compile-time interface check.
var _ types.VisitTable = (*visitsTable)(nil)

type visitsTable struct {
	backend *Backend
}

// Get retrieves a visit by ID.
func (t *visitsTable) Get(id string) (*types.Visit, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	row := t.backend.db.QueryRow(
		"SELECT visit_id, producer_id, property_id, visit_date, summary, recommendations, created_at FROM visits WHERE visit_id = ?",
		id,
	)
	v, err := hydrateVisit(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting visit %s: %w", id, err)
	}
	return v, nil
}

// Put creates or updates a visit. An empty VisitID generates a new UUID v7.
// Returns the actual ID used.
func (t *visitsTable) Put(v *types.Visit) (string, error) {
	if v == nil {
		return "", types.ErrInvalidData
	}
	if v.ProducerID == "" {
		return "", types.ErrInvalidData
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	if v.VisitID == "" {
		v.VisitID = newUUID()
	}
	visitDate := v.VisitDate
	if visitDate.IsZero() {
		visitDate = time.Now()
	}

	_, err := t.backend.db.Exec(
		`INSERT INTO visits (visit_id, producer_id, property_id, visit_date, summary, recommendations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(visit_id) DO UPDATE SET producer_id = excluded.producer_id,
		 property_id = excluded.property_id, visit_date = excluded.visit_date,
		 summary = excluded.summary, recommendations = excluded.recommendations,
		 created_at = excluded.created_at`,
		v.VisitID, v.ProducerID, v.PropertyID, visitDate.UTC().Format(dateLayout),
		v.Summary, v.Recommendations, formatTime(v.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("persisting visit: %w", err)
	}

	if err := persistTableJSONL(t.backend, "visits", "visits.jsonl", "created_at ASC"); err != nil {
		return "", fmt.Errorf("persisting visits.jsonl: %w", err)
	}
	return v.VisitID, nil
}

// Delete removes a visit.
func (t *visitsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	res, err := t.backend.db.Exec("DELETE FROM visits WHERE visit_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting visit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting visit: %w", err)
	}
	if affected == 0 {
		return types.ErrNotFound
	}
	if err := persistTableJSONL(t.backend, "visits", "visits.jsonl", "created_at ASC"); err != nil {
		return fmt.Errorf("persisting visits.jsonl: %w", err)
	}
	return nil
}

// Fetch returns visits, optionally restricted to one producer, newest first.
func (t *visitsTable) Fetch(producerID string) ([]*types.Visit, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	query := "SELECT visit_id, producer_id, property_id, visit_date, summary, recommendations, created_at FROM visits"
	var args []any
	if producerID != "" {
		query += " WHERE producer_id = ?"
		args = append(args, producerID)
	}
	query += " ORDER BY visit_date DESC"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching visits: %w", err)
	}
	defer rows.Close()

	visits := []*types.Visit{}
	for rows.Next() {
		v, err := hydrateVisit(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating visit: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}
	return visits, nil
}

// hydrateVisit converts one visits row into a *types.Visit.
func hydrateVisit(scan func(...any) error) (*types.Visit, error) {
	var v types.Visit
	var propertyID, summary, recommendations sql.NullString
	var visitDate sql.NullString
	var createdAt string
	if err := scan(&v.VisitID, &v.ProducerID, &propertyID, &visitDate, &summary, &recommendations, &createdAt); err != nil {
		return nil, err
	}
	v.PropertyID = propertyID.String
	v.Summary = summary.String
	v.Recommendations = recommendations.String

	var err error
	if v.VisitDate, err = parseDate(visitDate); err != nil {
		return nil, fmt.Errorf("parsing visit_date: %w", err)
	}
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &v, nil
}
