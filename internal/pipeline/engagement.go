package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agrovista/fieldops/pkg/types"
)

// Engagement is the append-only conversation log and follow-up schedule for
// opportunities. Notes are immutable once appended; the next-contact date is
// a single field that each schedule call overwrites.
type Engagement struct {
	mu    *sync.Mutex
	store types.Store
	now   func() time.Time
}

// NewEngagement creates the engagement log over the given store. It shares
// the store-wide write lock with the registry and the opportunity store.
func NewEngagement(store types.Store) *Engagement {
	return &Engagement{
		mu:    writeLock(store),
		store: store,
		now:   time.Now,
	}
}

// AppendNote prepends a dated note to the opportunity's history. The
// timestamp is formatted once here and stored verbatim. Prior notes are
// never mutated or removed. Returns the refreshed opportunity.
func (e *Engagement) AppendNote(id, content string) (*types.Opportunity, error) {
	if strings.TrimSpace(content) == "" {
		return nil, types.ErrEmptyContent
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.store.Opportunities().Get(id)
	if err != nil {
		return nil, err
	}

	note := types.EngagementNote{
		NoteID:    newNoteID(),
		Timestamp: e.now().UTC().Format(types.NoteTimestampFormat),
		Content:   content,
	}
	o.PrependNote(note)

	if _, err := e.store.Opportunities().Put(o); err != nil {
		return nil, fmt.Errorf("appending note: %w", err)
	}
	return o, nil
}

// ScheduleNextContact sets or overwrites the opportunity's next-contact
// date. The conversation history is unaffected. A zero date clears the
// schedule. Returns the refreshed opportunity.
func (e *Engagement) ScheduleNextContact(id string, date time.Time) (*types.Opportunity, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.store.Opportunities().Get(id)
	if err != nil {
		return nil, err
	}

	o.NextContactDate = date

	if _, err := e.store.Opportunities().Put(o); err != nil {
		return nil, fmt.Errorf("scheduling next contact: %w", err)
	}
	return o, nil
}

// newNoteID generates a UUID v7 note ID, falling back to v4.
func newNoteID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
