// Catalog table accessor.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/agrovista/fieldops/pkg/types"
)

// Compile-time interface check.
var _ types.CatalogTable = (*catalogTable)(nil)

type catalogTable struct {
	backend *Backend
}

// Get retrieves a catalog item by ID.
func (t *catalogTable) Get(id string) (*types.CatalogItem, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	row := t.backend.db.QueryRow(
		"SELECT item_id, name, category, unit, price, active, created_at FROM catalog_items WHERE item_id = ?",
		id,
	)
	item, err := hydrateCatalogItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting catalog item %s: %w", id, err)
	}
	return item, nil
}

// Put creates or updates a catalog item. An empty ItemID generates a new
// UUID v7. Returns the actual ID used.
func (t *catalogTable) Put(item *types.CatalogItem) (string, error) {
	if item == nil {
		return "", types.ErrInvalidData
	}
	if strings.TrimSpace(item.Name) == "" {
		return "", types.ErrEmptyName
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	if item.ItemID == "" {
		item.ItemID = newUUID()
	}

	_, err := t.backend.db.Exec(
		`INSERT INTO catalog_items (item_id, name, category, unit, price, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(item_id) DO UPDATE SET name = excluded.name,
		 category = excluded.category, unit = excluded.unit,
		 price = excluded.price, active = excluded.active,
		 created_at = excluded.created_at`,
		item.ItemID, item.Name, item.Category, item.Unit, item.Price,
		boolToInt(item.Active), formatTime(item.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("persisting catalog item: %w", err)
	}

	if err := persistTableJSONL(t.backend, "catalog_items", "catalog_items.jsonl", "created_at ASC"); err != nil {
		return "", fmt.Errorf("persisting catalog_items.jsonl: %w", err)
	}
	return item.ItemID, nil
}

// Delete removes a catalog item.
func (t *catalogTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	res, err := t.backend.db.Exec("DELETE FROM catalog_items WHERE item_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting catalog item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting catalog item: %w", err)
	}
	if affected == 0 {
		return types.ErrNotFound
	}
	if err := persistTableJSONL(t.backend, "catalog_items", "catalog_items.jsonl", "created_at ASC"); err != nil {
		return fmt.Errorf("persisting catalog_items.jsonl: %w", err)
	}
	return nil
}

// Fetch returns all catalog items ordered by name.
func (t *catalogTable) Fetch() ([]*types.CatalogItem, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := t.backend.db.Query(
		"SELECT item_id, name, category, unit, price, active, created_at FROM catalog_items ORDER BY name ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog items: %w", err)
	}
	defer rows.Close()

	items := []*types.CatalogItem{}
	for rows.Next() {
		item, err := hydrateCatalogItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating catalog item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog items: %w", err)
	}
	return items, nil
}

// hydrateCatalogItem converts one catalog_items row into a *types.CatalogItem.
func hydrateCatalogItem(scan func(...any) error) (*types.CatalogItem, error) {
	var item types.CatalogItem
	var category, unit sql.NullString
	var active int
	var createdAt string
	if err := scan(&item.ItemID, &item.Name, &category, &unit, &item.Price, &active, &createdAt); err != nil {
		return nil, err
	}
	item.Category = category.String
	item.Unit = unit.String
	item.Active = active != 0

	var err error
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &item, nil
}

// boolToInt maps a bool onto the INTEGER column encoding.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
