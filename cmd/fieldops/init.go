// Init command bootstraps the data directory and the default funnel.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the fieldops storage",
	Long: `Init creates the data directory, the JSONL storage files, and seeds
the default pipeline funnel (Lead, Contacted, Proposal Sent, Negotiation,
Closed) when no stages exist yet.

Example:
  fieldops init
  fieldops init --data-dir ./myproject/.fieldops-db`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	stages, err := store.Stages().Fetch()
	if err != nil {
		return fmt.Errorf("fetch stages: %w", err)
	}

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(map[string]any{
			"data_dir": dataDir,
			"stages":   len(stages),
		})
	}

	fmt.Printf("Initialized fieldops storage at %s (%d stages)\n", dataDir, len(stages))
	return nil
}
