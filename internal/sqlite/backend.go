package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/agrovista/fieldops/pkg/types"
)

// Compile-time interface check: Backend must implement Store.
var _ types.Store = (*Backend)(nil)

// Backend implements the Store interface using SQLite as the query engine
// and JSONL files as the source of truth. The database file is rebuilt from
// the JSONL files on every Attach, so the .db file itself is disposable.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	stages        *stagesTable
	opportunities *opportunitiesTable
	producers     *producersTable
	properties    *propertiesTable
	visits        *visitsTable
	catalog       *catalogTable
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	b := &Backend{}
	b.stages = &stagesTable{backend: b}
	b.opportunities = &opportunitiesTable{backend: b}
	b.producers = &producersTable{backend: b}
	b.properties = &propertiesTable{backend: b}
	b.visits = &visitsTable{backend: b}
	b.catalog = &catalogTable{backend: b}
	return b
}

// Attach initializes the backend with the given configuration. Creates
// DataDir if it does not exist, initializes the SQLite schema, loads the
// JSONL files, and seeds the default stage funnel on first run.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	config.DataDir = dataDir

	// Remove any existing database file; the schema is recreated fresh and
	// repopulated from JSONL on every attach.
	dbPath := filepath.Join(dataDir, "fieldops.db")
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating indexes: %w", err)
		}
	}

	b.db = db
	b.config = config

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return fmt.Errorf("init JSONL files: %w", err)
	}

	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	// The stage set must never be empty. First run seeds the default funnel.
	if err := seedDefaultStages(b); err != nil {
		db.Close()
		return fmt.Errorf("seed stages: %w", err)
	}

	b.attached = true
	return nil
}

// Detach releases all resources held by the backend. After Detach, table
// operations return ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// Stages returns the stage table accessor.
func (b *Backend) Stages() types.StageTable { return b.stages }

// Opportunities returns the opportunity table accessor.
func (b *Backend) Opportunities() types.OpportunityTable { return b.opportunities }

// Producers returns the producer table accessor.
func (b *Backend) Producers() types.ProducerTable { return b.producers }

// Properties returns the property table accessor.
func (b *Backend) Properties() types.PropertyTable { return b.properties }

// Visits returns the visit table accessor.
func (b *Backend) Visits() types.VisitTable { return b.visits }

// Catalog returns the catalog table accessor.
func (b *Backend) Catalog() types.CatalogTable { return b.catalog }

// newUUID generates a UUID v7 string, falling back to v4 if the monotonic
// source fails.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
