// Producer table accessor.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/agrovista/fieldops/pkg/types"
)

// Compile-time interface check.
var _ types.ProducerTable = (*producersTable)(nil)

type producersTable struct {
	backend *Backend
}

// Get retrieves a producer by ID.
func (t *producersTable) Get(id string) (*types.Producer, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	row := t.backend.db.QueryRow(
		"SELECT producer_id, name, farm_name, email, phone, contacts, created_at FROM producers WHERE producer_id = ?",
		id,
	)
	p, err := hydrateProducer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting producer %s: %w", id, err)
	}
	return p, nil
}

// Put creates or updates a producer. An empty ProducerID generates a new
// UUID v7. Returns the actual ID used.
func (t *producersTable) Put(p *types.Producer) (string, error) {
	if p == nil {
		return "", types.ErrInvalidData
	}
	if strings.TrimSpace(p.Name) == "" {
		return "", types.ErrEmptyName
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	if p.ProducerID == "" {
		p.ProducerID = newUUID()
	}
	contacts, err := json.Marshal(p.Contacts)
	if err != nil {
		return "", fmt.Errorf("marshaling contacts: %w", err)
	}

	_, err = t.backend.db.Exec(
		`INSERT INTO producers (producer_id, name, farm_name, email, phone, contacts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(producer_id) DO UPDATE SET name = excluded.name,
		 farm_name = excluded.farm_name, email = excluded.email,
		 phone = excluded.phone, contacts = excluded.contacts,
		 created_at = excluded.created_at`,
		p.ProducerID, p.Name, p.FarmName, p.Email, p.Phone, string(contacts), formatTime(p.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("persisting producer: %w", err)
	}

	if err := persistTableJSONL(t.backend, "producers", "producers.jsonl", "created_at ASC"); err != nil {
		return "", fmt.Errorf("persisting producers.jsonl: %w", err)
	}
	return p.ProducerID, nil
}

// Delete removes a producer.
func (t *producersTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	res, err := t.backend.db.Exec("DELETE FROM producers WHERE producer_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting producer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting producer: %w", err)
	}
	if affected == 0 {
		return types.ErrNotFound
	}
	if err := persistTableJSONL(t.backend, "producers", "producers.jsonl", "created_at ASC"); err != nil {
		return fmt.Errorf("persisting producers.jsonl: %w", err)
	}
	return nil
}

// Fetch returns all producers ordered by name.
func (t *producersTable) Fetch() ([]*types.Producer, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := t.backend.db.Query(
		"SELECT producer_id, name, farm_name, email, phone, contacts, created_at FROM producers ORDER BY name ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("fetching producers: %w", err)
	}
	defer rows.Close()

	producers := []*types.Producer{}
	for rows.Next() {
		p, err := hydrateProducer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating producer: %w", err)
		}
		producers = append(producers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating producers: %w", err)
	}
	return producers, nil
}

// hydrateProducer converts one producers row into a *types.Producer.
func hydrateProducer(scan func(...any) error) (*types.Producer, error) {
	var p types.Producer
	var farmName, email, phone, contacts sql.NullString
	var createdAt string
	if err := scan(&p.ProducerID, &p.Name, &farmName, &email, &phone, &contacts, &createdAt); err != nil {
		return nil, err
	}
	p.FarmName = farmName.String
	p.Email = email.String
	p.Phone = phone.String

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if contacts.Valid && contacts.String != "" {
		if err := json.Unmarshal([]byte(contacts.String), &p.Contacts); err != nil {
			return nil, fmt.Errorf("parsing contacts: %w", err)
		}
	}
	return &p, nil
}
