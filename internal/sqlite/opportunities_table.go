// Opportunity table accessor.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agrovista/fieldops/pkg/types"
)

// Compile-time interface check.
var _ types.OpportunityTable = (*opportunitiesTable)(nil)

// opportunitiesTable implements types.OpportunityTable. Scalar fields map to
// columns; activity groups and conversation history are stored as JSON text
// in their own columns.
type opportunitiesTable struct {
	backend *Backend
}

const opportunityColumns = `opportunity_id, code, title, stage_id, producer_id,
	contact_id, farm_name, safra, activity_groups, total_value,
	closing_probability, created_at, expected_closing_date, validity_date,
	last_movement_date, next_contact_date, conversation_history, description,
	internal_notes, generated_content`

// Get retrieves an opportunity by ID.
func (t *opportunitiesTable) Get(id string) (*types.Opportunity, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}
	return t.getLocked(id)
}

// getLocked performs the hydrating lookup; the caller holds the backend lock.
func (t *opportunitiesTable) getLocked(id string) (*types.Opportunity, error) {
	row := t.backend.db.QueryRow(
		"SELECT "+opportunityColumns+" FROM opportunities WHERE opportunity_id = ?", id,
	)
	o, err := hydrateOpportunity(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting opportunity %s: %w", id, err)
	}
	return o, nil
}

// Put creates or updates an opportunity. An empty OpportunityID generates a
// new UUID v7. Returns the actual ID used. Put persists whatever it is
// handed; validation and derived-field rules live in the pipeline engine.
func (t *opportunitiesTable) Put(o *types.Opportunity) (string, error) {
	if o == nil {
		return "", types.ErrInvalidData
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	if o.OpportunityID == "" {
		o.OpportunityID = newUUID()
	}

	groups, err := json.Marshal(o.ActivityGroups)
	if err != nil {
		return "", fmt.Errorf("marshaling activity groups: %w", err)
	}
	history, err := json.Marshal(o.ConversationHistory)
	if err != nil {
		return "", fmt.Errorf("marshaling conversation history: %w", err)
	}

	_, err = t.backend.db.Exec(
		`INSERT INTO opportunities (`+opportunityColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(opportunity_id) DO UPDATE SET
		 code = excluded.code, title = excluded.title, stage_id = excluded.stage_id,
		 producer_id = excluded.producer_id, contact_id = excluded.contact_id,
		 farm_name = excluded.farm_name, safra = excluded.safra,
		 activity_groups = excluded.activity_groups, total_value = excluded.total_value,
		 closing_probability = excluded.closing_probability,
		 created_at = excluded.created_at,
		 expected_closing_date = excluded.expected_closing_date,
		 validity_date = excluded.validity_date,
		 last_movement_date = excluded.last_movement_date,
		 next_contact_date = excluded.next_contact_date,
		 conversation_history = excluded.conversation_history,
		 description = excluded.description, internal_notes = excluded.internal_notes,
		 generated_content = excluded.generated_content`,
		o.OpportunityID, o.Code, o.Title, o.StageID, o.ProducerID,
		o.ContactID, o.FarmName, o.Safra, string(groups), o.TotalValue,
		o.ClosingProbability, formatTime(o.CreatedAt), formatDate(o.ExpectedClosingDate),
		formatDate(o.ValidityDate), formatTime(o.LastMovementDate),
		formatDate(o.NextContactDate), string(history), o.Description,
		o.InternalNotes, o.GeneratedContent,
	)
	if err != nil {
		return "", fmt.Errorf("persisting opportunity: %w", err)
	}

	if err := t.persistLocked(); err != nil {
		return "", err
	}
	return o.OpportunityID, nil
}

// Delete removes an opportunity permanently.
func (t *opportunitiesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	res, err := t.backend.db.Exec("DELETE FROM opportunities WHERE opportunity_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting opportunity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting opportunity: %w", err)
	}
	if affected == 0 {
		return types.ErrNotFound
	}
	return t.persistLocked()
}

// Fetch returns opportunities matching the filter, newest first. Scalar
// filters run in SQL; the activity-label filter runs in Go against the
// hydrated groups.
func (t *opportunitiesTable) Fetch(filter *types.OpportunityFilter) ([]*types.Opportunity, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	query := "SELECT " + opportunityColumns + " FROM opportunities"
	var conditions []string
	var args []any

	if filter != nil {
		if filter.Text != "" {
			pattern := "%" + filter.Text + "%"
			conditions = append(conditions,
				"(title LIKE ? COLLATE NOCASE OR farm_name LIKE ? COLLATE NOCASE OR code LIKE ? COLLATE NOCASE)")
			args = append(args, pattern, pattern, pattern)
		}
		if filter.Safra != "" {
			conditions = append(conditions, "safra = ?")
			args = append(args, filter.Safra)
		}
		if filter.StageID != "" {
			conditions = append(conditions, "stage_id = ?")
			args = append(args, filter.StageID)
		}
		if filter.Bucket != "" {
			if !filter.Bucket.Valid() {
				return nil, types.ErrInvalidData
			}
			low, high := filter.Bucket.Range()
			conditions = append(conditions, "closing_probability BETWEEN ? AND ?")
			args = append(args, low, high)
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching opportunities: %w", err)
	}
	defer rows.Close()

	results := []*types.Opportunity{}
	for rows.Next() {
		o, err := hydrateOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating opportunity: %w", err)
		}
		if filter != nil && filter.Activity != "" && !o.HasActivity(filter.Activity) {
			continue
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating opportunities: %w", err)
	}
	return results, nil
}

// ReassignStage moves every opportunity on fromStageID to toStageID and
// stamps last_movement_date, in a single transaction. Returns the number of
// opportunities moved.
func (t *opportunitiesTable) ReassignStage(fromStageID, toStageID string, movedAt time.Time) (int, error) {
	if fromStageID == "" || toStageID == "" {
		return 0, types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return 0, types.ErrStoreDetached
	}

	tx, err := t.backend.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning reassignment: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"UPDATE opportunities SET stage_id = ?, last_movement_date = ? WHERE stage_id = ?",
		toStageID, formatTime(movedAt), fromStageID,
	)
	if err != nil {
		return 0, fmt.Errorf("reassigning opportunities: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reassigning opportunities: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing reassignment: %w", err)
	}

	if err := t.persistLocked(); err != nil {
		return 0, err
	}
	return int(moved), nil
}

// NextCode returns the next sequence code: P- followed by a zero-padded
// counter, one past the highest code currently stored.
func (t *opportunitiesTable) NextCode() (string, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	rows, err := t.backend.db.Query("SELECT code FROM opportunities")
	if err != nil {
		return "", fmt.Errorf("querying codes: %w", err)
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return "", fmt.Errorf("scanning code: %w", err)
		}
		n, ok := parseCode(code)
		if ok && n > max {
			max = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterating codes: %w", err)
	}
	return fmt.Sprintf("P-%04d", max+1), nil
}

// parseCode extracts the numeric suffix from a P-NNNN code.
func parseCode(code string) (int, bool) {
	rest, ok := strings.CutPrefix(code, "P-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// persistLocked rewrites opportunities.jsonl; the caller holds the write lock.
func (t *opportunitiesTable) persistLocked() error {
	if err := persistTableJSONL(t.backend, "opportunities", "opportunities.jsonl", "created_at ASC"); err != nil {
		return fmt.Errorf("persisting opportunities.jsonl: %w", err)
	}
	return nil
}

// hydrateOpportunity converts one opportunities row into a *types.Opportunity.
func hydrateOpportunity(scan func(...any) error) (*types.Opportunity, error) {
	var o types.Opportunity
	var producerID, contactID, farmName, safra sql.NullString
	var description, internalNotes, generatedContent sql.NullString
	var createdAt, lastMovement string
	var expectedClosing, validity, nextContact sql.NullString
	var groups, history string

	if err := scan(
		&o.OpportunityID, &o.Code, &o.Title, &o.StageID, &producerID,
		&contactID, &farmName, &safra, &groups, &o.TotalValue,
		&o.ClosingProbability, &createdAt, &expectedClosing, &validity,
		&lastMovement, &nextContact, &history, &description,
		&internalNotes, &generatedContent,
	); err != nil {
		return nil, err
	}

	o.ProducerID = producerID.String
	o.ContactID = contactID.String
	o.FarmName = farmName.String
	o.Safra = safra.String
	o.Description = description.String
	o.InternalNotes = internalNotes.String
	o.GeneratedContent = generatedContent.String

	var err error
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if o.LastMovementDate, err = parseTime(lastMovement); err != nil {
		return nil, fmt.Errorf("parsing last_movement_date: %w", err)
	}
	if o.ExpectedClosingDate, err = parseDate(expectedClosing); err != nil {
		return nil, fmt.Errorf("parsing expected_closing_date: %w", err)
	}
	if o.ValidityDate, err = parseDate(validity); err != nil {
		return nil, fmt.Errorf("parsing validity_date: %w", err)
	}
	if o.NextContactDate, err = parseDate(nextContact); err != nil {
		return nil, fmt.Errorf("parsing next_contact_date: %w", err)
	}

	if err := json.Unmarshal([]byte(groups), &o.ActivityGroups); err != nil {
		return nil, fmt.Errorf("parsing activity groups: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &o.ConversationHistory); err != nil {
		return nil, fmt.Errorf("parsing conversation history: %w", err)
	}
	return &o, nil
}
