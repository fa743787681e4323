// Shared helpers for fieldops CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/agrovista/fieldops/internal/pipeline"
	"github.com/agrovista/fieldops/internal/sqlite"
	"github.com/agrovista/fieldops/pkg/types"
)

// dateFlagLayout is the format accepted by all date flags.
const dateFlagLayout = "2006-01-02"

// attachStore resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer store.Detach().
func attachStore() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}

	return backend, nil
}

// newOpportunities wires the opportunity engine against an attached store,
// with live catalog pricing and producer name caching.
func newOpportunities(store types.Store) *pipeline.Opportunities {
	return pipeline.NewOpportunities(store, store.Producers(), pipeline.PriceFromCatalog(store.Catalog()))
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

// parseDateFlag parses a YYYY-MM-DD flag value. An empty value returns the
// zero time.
func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFlagLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

// formatDateCell renders a date for table output, or "-" when unset.
func formatDateCell(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateFlagLayout)
}

// confidenceCell renders the confidence level with a bucket-appropriate color.
func confidenceCell(o *types.Opportunity) string {
	level := string(types.Confidence(o.ClosingProbability))
	switch types.Bucket(o.ClosingProbability) {
	case types.BucketHigh:
		return color.GreenString(level)
	case types.BucketMedium:
		return color.YellowString(level)
	default:
		return color.RedString(level)
	}
}

// shortID truncates a UUID to its first 8 characters for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to at most n runes for table output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
