// Stage commands manage the pipeline funnel.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agrovista/fieldops/internal/pipeline"
	"github.com/agrovista/fieldops/pkg/types"
)

var (
	stageTitle string
	stageColor string
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Manage pipeline stages",
	Long: `Stage manages the configurable funnel: list, add, rename, reorder,
and delete stages. Deleting a stage moves its opportunities to the first
stage of the funnel; the last remaining stage cannot be deleted.`,
}

var stageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stages in funnel order",
	Args:  cobra.NoArgs,
	RunE:  runStageList,
}

var stageAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a new stage to the funnel",
	Long: `Add appends a stage at the end of the funnel.

Example:
  fieldops stage add --title "Qualified" --color "#26c6da"`,
	RunE: runStageAdd,
}

var stageUpdateCmd = &cobra.Command{
	Use:   "update <stage-id>",
	Short: "Rename or recolor a stage",
	Args:  cobra.ExactArgs(1),
	RunE:  runStageUpdate,
}

var stageMoveCmd = &cobra.Command{
	Use:   "move <stage-id> <up|down>",
	Short: "Move a stage one position up or down",
	Args:  cobra.ExactArgs(2),
	RunE:  runStageMove,
}

var stageDeleteCmd = &cobra.Command{
	Use:   "delete <stage-id>",
	Short: "Delete a stage, reassigning its opportunities",
	Args:  cobra.ExactArgs(1),
	RunE:  runStageDelete,
}

func init() {
	stageAddCmd.Flags().StringVar(&stageTitle, "title", "", "stage title (required)")
	stageAddCmd.Flags().StringVar(&stageColor, "color", "", "display color, e.g. #42a5f5")
	_ = stageAddCmd.MarkFlagRequired("title")

	stageUpdateCmd.Flags().StringVar(&stageTitle, "title", "", "new stage title")
	stageUpdateCmd.Flags().StringVar(&stageColor, "color", "", "new display color")

	stageCmd.AddCommand(stageListCmd)
	stageCmd.AddCommand(stageAddCmd)
	stageCmd.AddCommand(stageUpdateCmd)
	stageCmd.AddCommand(stageMoveCmd)
	stageCmd.AddCommand(stageDeleteCmd)
}

func runStageList(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	stages, err := pipeline.NewRegistry(store).List()
	if err != nil {
		return fmt.Errorf("list stages: %w", err)
	}

	if flagJSON {
		return printJSON(stages)
	}

	printStageTable(stages)
	return nil
}

func runStageAdd(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	stage, err := pipeline.NewRegistry(store).AddStage(stageTitle, stageColor)
	if err != nil {
		return fmt.Errorf("add stage: %w", err)
	}

	if flagJSON {
		return printJSON(stage)
	}

	fmt.Printf("Created stage %s: %s (position %d)\n", shortID(stage.StageID), stage.Title, stage.Order)
	return nil
}

func runStageUpdate(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	registry := pipeline.NewRegistry(store)

	stage, err := store.Stages().Get(args[0])
	if err != nil {
		return fmt.Errorf("get stage: %w", err)
	}

	if stageTitle != "" {
		stage.Title = stageTitle
	}
	if stageColor != "" {
		stage.Color = stageColor
	}

	updated, err := registry.UpdateStage(stage)
	if err != nil {
		return fmt.Errorf("update stage: %w", err)
	}

	if flagJSON {
		return printJSON(updated)
	}

	fmt.Printf("Updated stage %s: %s\n", shortID(updated.StageID), updated.Title)
	return nil
}

func runStageMove(cmd *cobra.Command, args []string) error {
	direction := types.Direction(args[1])
	if !direction.Valid() {
		return fmt.Errorf("move stage: %w: %q", types.ErrInvalidDirection, args[1])
	}

	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	stages, err := pipeline.NewRegistry(store).Reorder(args[0], direction)
	if err != nil {
		return fmt.Errorf("move stage: %w", err)
	}

	if flagJSON {
		return printJSON(stages)
	}

	printStageTable(stages)
	return nil
}

func runStageDelete(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	result, err := pipeline.NewRegistry(store).DeleteStage(args[0])
	if err != nil {
		return fmt.Errorf("delete stage: %w", err)
	}

	if flagJSON {
		return printJSON(result)
	}

	fmt.Printf("Deleted stage; %d opportunity(ies) moved to %s\n", result.Reassigned, shortID(result.FallbackID))
	printStageTable(result.Stages)
	return nil
}

// printStageTable prints stages in a human-readable table format.
func printStageTable(stages []*types.Stage) {
	if len(stages) == 0 {
		fmt.Println("No stages found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tPOSITION\tTITLE\tCOLOR")
	fmt.Fprintln(w, "--\t--------\t-----\t-----")
	for _, s := range stages {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", shortID(s.StageID), s.Order, s.Title, s.Color)
	}
	w.Flush()

	output := sb.String()
	for _, line := range strings.Split(output, "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}

	fmt.Printf("Total: %d stage(s)\n", len(stages))
}
