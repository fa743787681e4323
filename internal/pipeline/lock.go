package pipeline

import (
	"sync"

	"github.com/agrovista/fieldops/pkg/types"
)

// Stage-validating writes must serialize with stage deletion: a transition
// that validates its target stage, loses the CPU while DeleteStage reassigns
// and removes that stage, and then persists would leave an opportunity
// pointing at a stage that no longer exists. The registry, the opportunity
// store, and the engagement log therefore share one write lock per backing
// store.
var (
	writeLocksMu sync.Mutex
	writeLocks   = map[types.Store]*sync.Mutex{}
)

// writeLock returns the write lock for the given store, creating it on first
// use. All engine components over the same store receive the same lock.
func writeLock(store types.Store) *sync.Mutex {
	writeLocksMu.Lock()
	defer writeLocksMu.Unlock()

	mu, ok := writeLocks[store]
	if !ok {
		mu = &sync.Mutex{}
		writeLocks[store] = mu
	}
	return mu
}
