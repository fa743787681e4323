// Default stage seeding on backend attach.
package sqlite

import "fmt"

// defaultStage describes a funnel stage seeded on first startup.
type defaultStage struct {
	title    string
	position int
	color    string
}

// defaultStages is the funnel created when the stages table is empty. The
// stage set must never be empty, so a fresh data directory starts with these.
var defaultStages = []defaultStage{
	{"Lead", 1, "#78909c"},
	{"Contacted", 2, "#42a5f5"},
	{"Proposal Sent", 3, "#ab47bc"},
	{"Negotiation", 4, "#ffa726"},
	{"Closed", 5, "#66bb6a"},
}

// seedDefaultStages creates the default funnel if the stages table is empty
// (first run). Seeding is idempotent: it only runs when stages.jsonl held no
// records on startup. The caller holds the backend write lock.
func seedDefaultStages(b *Backend) error {
	var count int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM stages").Scan(&count); err != nil {
		return fmt.Errorf("counting stages: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, s := range defaultStages {
		_, err := b.db.Exec(
			"INSERT INTO stages (stage_id, title, position, color) VALUES (?, ?, ?, ?)",
			newUUID(), s.title, s.position, s.color,
		)
		if err != nil {
			return fmt.Errorf("seeding stage %q: %w", s.title, err)
		}
	}

	return persistTableJSONL(b, "stages", "stages.jsonl", "position ASC")
}
