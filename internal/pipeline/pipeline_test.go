package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agrovista/fieldops/internal/sqlite"
	"github.com/agrovista/fieldops/pkg/types"
)

// newTestStore attaches a SQLite backend over a temp dir. The default funnel
// is seeded on first attach.
func newTestStore(t *testing.T) types.Store {
	t.Helper()

	b := sqlite.NewBackend()
	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

// fixedClock returns a now() func pinned to the given instant.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// stageByTitle finds a seeded stage by title.
func stageByTitle(t *testing.T, store types.Store, title string) *types.Stage {
	t.Helper()

	stages, err := store.Stages().Fetch()
	require.NoError(t, err)
	for _, s := range stages {
		if s.Title == title {
			return s
		}
	}
	t.Fatalf("stage %q not found", title)
	return nil
}
