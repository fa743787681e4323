// Property table accessor.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/agrovista/fieldops/pkg/types"
)

// Compile-time interface check.
var _ types.PropertyTable = (*propertiesTable)(nil)

type propertiesTable struct {
	backend *Backend
}

// Get retrieves a property by ID.
func (t *propertiesTable) Get(id string) (*types.Property, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	row := t.backend.db.QueryRow(
		"SELECT property_id, producer_id, name, city, state, area_hectares, created_at FROM properties WHERE property_id = ?",
		id,
	)
	p, err := hydrateProperty(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting property %s: %w", id, err)
	}
	return p, nil
}

// Put creates or updates a property. An empty PropertyID generates a new
// UUID v7. Returns the actual ID used.
func (t *propertiesTable) Put(p *types.Property) (string, error) {
	if p == nil {
		return "", types.ErrInvalidData
	}
	if strings.TrimSpace(p.Name) == "" {
		return "", types.ErrEmptyName
	}
	if p.ProducerID == "" {
		return "", types.ErrInvalidData
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	if p.PropertyID == "" {
		p.PropertyID = newUUID()
	}

	_, err := t.backend.db.Exec(
		`INSERT INTO properties (property_id, producer_id, name, city, state, area_hectares, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(property_id) DO UPDATE SET producer_id = excluded.producer_id,
		 name = excluded.name, city = excluded.city, state = excluded.state,
		 area_hectares = excluded.area_hectares, created_at = excluded.created_at`,
		p.PropertyID, p.ProducerID, p.Name, p.City, p.State, p.AreaHectares, formatTime(p.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("persisting property: %w", err)
	}

	if err := persistTableJSONL(t.backend, "properties", "properties.jsonl", "created_at ASC"); err != nil {
		return "", fmt.Errorf("persisting properties.jsonl: %w", err)
	}
	return p.PropertyID, nil
}

// Delete removes a property.
func (t *propertiesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	res, err := t.backend.db.Exec("DELETE FROM properties WHERE property_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}
	if affected == 0 {
		return types.ErrNotFound
	}
	if err := persistTableJSONL(t.backend, "properties", "properties.jsonl", "created_at ASC"); err != nil {
		return fmt.Errorf("persisting properties.jsonl: %w", err)
	}
	return nil
}

// Fetch returns properties, optionally restricted to one producer, ordered
// by name.
func (t *propertiesTable) Fetch(producerID string) ([]*types.Property, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	query := "SELECT property_id, producer_id, name, city, state, area_hectares, created_at FROM properties"
	var args []any
	if producerID != "" {
		query += " WHERE producer_id = ?"
		args = append(args, producerID)
	}
	query += " ORDER BY name ASC"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching properties: %w", err)
	}
	defer rows.Close()

	properties := []*types.Property{}
	for rows.Next() {
		p, err := hydrateProperty(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}
	return properties, nil
}

// hydrateProperty converts one properties row into a *types.Property.
func hydrateProperty(scan func(...any) error) (*types.Property, error) {
	var p types.Property
	var city, state sql.NullString
	var area sql.NullFloat64
	var createdAt string
	if err := scan(&p.PropertyID, &p.ProducerID, &p.Name, &city, &state, &area, &createdAt); err != nil {
		return nil, err
	}
	p.City = city.String
	p.State = state.String
	p.AreaHectares = area.Float64

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &p, nil
}
