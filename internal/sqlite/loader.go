// JSONL loading for startup.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column
// lists. Record keys match column names, so the JSON tags on the entity
// structs define the on-disk format.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{"stages.jsonl", "stages", []string{"stage_id", "title", "position", "color"}},
	{"producers.jsonl", "producers", []string{"producer_id", "name", "farm_name", "email", "phone", "contacts", "created_at"}},
	{"properties.jsonl", "properties", []string{"property_id", "producer_id", "name", "city", "state", "area_hectares", "created_at"}},
	{"opportunities.jsonl", "opportunities", []string{
		"opportunity_id", "code", "title", "stage_id", "producer_id", "contact_id",
		"farm_name", "safra", "activity_groups", "total_value", "closing_probability",
		"created_at", "expected_closing_date", "validity_date", "last_movement_date",
		"next_contact_date", "conversation_history", "description", "internal_notes",
		"generated_content",
	}},
	{"visits.jsonl", "visits", []string{"visit_id", "producer_id", "property_id", "visit_date", "summary", "recommendations", "created_at"}},
	{"catalog_items.jsonl", "catalog_items", []string{"item_id", "name", "category", "unit", "price", "active", "created_at"}},
}

// initJSONLFiles creates empty JSONL files for any table that does not have
// one yet, so a fresh data directory is fully populated after the first Attach.
func initJSONLFiles(dataDir string) error {
	for _, mapping := range jsonlTableMapping {
		path := filepath.Join(dataDir, mapping.file)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", mapping.file, err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", mapping.file, err)
		}
	}
	return nil
}

// loadAllJSONL reads each JSONL file from dataDir and inserts records into
// the corresponding SQLite tables. Loading is transactional: all files load
// or the database stays empty. Malformed lines and unknown fields are
// skipped, so files written by a newer generation still load.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		path := filepath.Join(dataDir, mapping.file)
		records, err := readJSONL(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, mapping.table, mapping.columns, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a SQLite table. Only
// columns listed in the mapping are extracted; extra fields from future
// generations do not cause errors. Nested JSON values (activity groups,
// conversation history, contacts) are re-serialized to their column's text
// form.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) error {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		joinColumns(columns),
		joinColumns(placeholders),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			val, ok := obj[col]
			if !ok {
				args[i] = nil
				continue
			}
			switch v := val.(type) {
			case map[string]any, []any:
				data, err := json.Marshal(v)
				if err != nil {
					args[i] = nil
					continue
				}
				args[i] = string(data)
			default:
				args[i] = val
			}
		}

		if _, err := stmt.Exec(args...); err != nil {
			// Skip records that violate constraints.
			continue
		}
	}

	return nil
}

// joinColumns joins column names with commas.
func joinColumns(cols []string) string {
	result := ""
	for i, c := range cols {
		if i > 0 {
			result += ", "
		}
		result += c
	}
	return result
}
