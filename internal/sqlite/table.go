// Shared persistence helpers for the table accessors.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// dateLayout is the storage format for date-granular fields (expected
// closing, validity, next contact, visit date).
const dateLayout = "2006-01-02"

// persistTableJSONL reads all rows from the given SQLite table and writes
// them as JSONL to the given filename using the atomic write pattern. Column
// values round-trip verbatim: nested JSON columns stay encoded as text.
// Shared across all table accessors; callers hold the backend lock.
func persistTableJSONL(b *Backend, tableName, fileName, orderBy string) error {
	query := "SELECT * FROM " + tableName
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	rows, err := b.db.Query(query)
	if err != nil {
		return fmt.Errorf("querying %s for JSONL: %w", tableName, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("getting columns for %s: %w", tableName, err)
	}

	var records []json.RawMessage
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return fmt.Errorf("scanning %s row: %w", tableName, err)
		}
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			if bs, ok := values[i].([]byte); ok {
				rec[col] = string(bs)
				continue
			}
			rec[col] = values[i]
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling %s row: %w", tableName, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s for JSONL: %w", tableName, err)
	}

	return writeJSONL(filepath.Join(b.config.DataDir, fileName), records)
}

// formatTime renders a timestamp column value.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads a timestamp column value.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// formatDate renders a date-granular column value; zero times map to NULL.
func formatDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(dateLayout)
}

// parseDate reads a nullable date-granular column value.
func parseDate(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s.String)
}
