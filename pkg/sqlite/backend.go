// Package sqlite provides the public API for the SQLite storage backend.
// It exposes the factory function while keeping implementation details
// internal.
package sqlite

import (
	"github.com/agrovista/fieldops/internal/sqlite"
	"github.com/agrovista/fieldops/pkg/types"
)

// NewStore creates a new SQLite-backed Store instance.
// The store is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".fieldops-db",
//	})
//	defer store.Detach()
func NewStore() types.Store {
	return sqlite.NewBackend()
}
