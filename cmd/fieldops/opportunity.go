// Opportunity commands manage pipeline deals.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agrovista/fieldops/pkg/types"
)

var (
	oppTitle       string
	oppProducer    string
	oppContact     string
	oppSafra       string
	oppStage       string
	oppProbability int
	oppExpected    string
	oppValidity    string
	oppDescription string
	oppDraftFile   string

	oppFilterText   string
	oppFilterSafra  string
	oppFilterActive string
	oppFilterBucket string
	oppFilterStage  string
)

var oppCmd = &cobra.Command{
	Use:     "opportunity",
	Aliases: []string{"opp"},
	Short:   "Manage sales opportunities",
	Long: `Opportunity manages deals moving through the pipeline funnel:
create, list, inspect, move between stages, and delete.`,
}

var oppAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new opportunity",
	Long: `Add creates an opportunity. Without --stage the opportunity enters
the first stage of the funnel. Line items and activity groups can be
supplied as a JSON draft file with --draft-file; scalar flags override
the draft's fields.

Example:
  fieldops opportunity add --title "Soy full package" --producer <id> --probability 60
  fieldops opportunity add --draft-file deal.json`,
	RunE: runOppAdd,
}

var oppListCmd = &cobra.Command{
	Use:   "list",
	Short: "List opportunities",
	Long: `List fetches opportunities, newest first. All filters combine with
AND semantics.

Example:
  fieldops opportunity list
  fieldops opportunity list --safra 2025/26 --bucket high
  fieldops opportunity list --text soy --json`,
	Args: cobra.NoArgs,
	RunE: runOppList,
}

var oppShowCmd = &cobra.Command{
	Use:   "show <opportunity-id>",
	Short: "Show one opportunity in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runOppShow,
}

var oppMoveCmd = &cobra.Command{
	Use:   "move <opportunity-id> <stage-id>",
	Short: "Move an opportunity to another stage",
	Args:  cobra.ExactArgs(2),
	RunE:  runOppMove,
}

var oppDeleteCmd = &cobra.Command{
	Use:   "delete <opportunity-id>",
	Short: "Delete an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE:  runOppDelete,
}

func init() {
	oppAddCmd.Flags().StringVar(&oppTitle, "title", "", "opportunity title")
	oppAddCmd.Flags().StringVar(&oppProducer, "producer", "", "producer ID")
	oppAddCmd.Flags().StringVar(&oppContact, "contact", "", "contact ID")
	oppAddCmd.Flags().StringVar(&oppSafra, "safra", "", "season tag, e.g. 2025/26")
	oppAddCmd.Flags().StringVar(&oppStage, "stage", "", "initial stage ID (default: first stage)")
	oppAddCmd.Flags().IntVar(&oppProbability, "probability", 0, "closing probability 0-100")
	oppAddCmd.Flags().StringVar(&oppExpected, "expected-closing", "", "expected closing date (YYYY-MM-DD)")
	oppAddCmd.Flags().StringVar(&oppValidity, "validity", "", "proposal validity date (YYYY-MM-DD)")
	oppAddCmd.Flags().StringVar(&oppDescription, "description", "", "free-form description")
	oppAddCmd.Flags().StringVar(&oppDraftFile, "draft-file", "", "JSON file with the full opportunity draft")

	oppListCmd.Flags().StringVar(&oppFilterText, "text", "", "substring match on title, farm name, or code")
	oppListCmd.Flags().StringVar(&oppFilterSafra, "safra", "", "filter by season tag")
	oppListCmd.Flags().StringVar(&oppFilterActive, "activity", "", "filter by activity group label")
	oppListCmd.Flags().StringVar(&oppFilterBucket, "bucket", "", "filter by confidence bucket (low, medium, high)")
	oppListCmd.Flags().StringVar(&oppFilterStage, "stage", "", "filter by stage ID")

	oppCmd.AddCommand(oppAddCmd)
	oppCmd.AddCommand(oppListCmd)
	oppCmd.AddCommand(oppShowCmd)
	oppCmd.AddCommand(oppMoveCmd)
	oppCmd.AddCommand(oppDeleteCmd)
	oppCmd.AddCommand(oppUpdateCmd)
	oppCmd.AddCommand(oppNoteCmd)
	oppCmd.AddCommand(oppScheduleCmd)
	oppCmd.AddCommand(oppGenerateCmd)
}

func runOppAdd(cmd *cobra.Command, args []string) error {
	draft := &types.Opportunity{}

	if oppDraftFile != "" {
		data, err := os.ReadFile(oppDraftFile)
		if err != nil {
			return fmt.Errorf("read draft file: %w", err)
		}
		if err := json.Unmarshal(data, draft); err != nil {
			return fmt.Errorf("parse draft file: %w", err)
		}
	}

	if oppTitle != "" {
		draft.Title = oppTitle
	}
	if oppProducer != "" {
		draft.ProducerID = oppProducer
	}
	if oppContact != "" {
		draft.ContactID = oppContact
	}
	if oppSafra != "" {
		draft.Safra = oppSafra
	}
	if oppStage != "" {
		draft.StageID = oppStage
	}
	if cmd.Flags().Changed("probability") {
		draft.ClosingProbability = oppProbability
	}
	if cmd.Flags().Changed("description") {
		draft.Description = oppDescription
	}
	if oppExpected != "" {
		t, err := parseDateFlag(oppExpected)
		if err != nil {
			return err
		}
		draft.ExpectedClosingDate = t
	}
	if oppValidity != "" {
		t, err := parseDateFlag(oppValidity)
		if err != nil {
			return err
		}
		draft.ValidityDate = t
	}

	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	created, err := newOpportunities(store).Create(draft)
	if err != nil {
		return fmt.Errorf("create opportunity: %w", err)
	}

	if flagJSON {
		return printJSON(created)
	}

	fmt.Printf("Created opportunity %s (%s): %s\n", created.Code, shortID(created.OpportunityID), created.Title)
	return nil
}

func runOppList(cmd *cobra.Command, args []string) error {
	filter := &types.OpportunityFilter{
		Text:     oppFilterText,
		Safra:    oppFilterSafra,
		Activity: oppFilterActive,
		StageID:  oppFilterStage,
	}
	if oppFilterBucket != "" {
		bucket := types.ConfidenceBucket(oppFilterBucket)
		if !bucket.Valid() {
			return fmt.Errorf("invalid bucket %q (want low, medium, or high)", oppFilterBucket)
		}
		filter.Bucket = bucket
	}

	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	opps, err := newOpportunities(store).List(filter)
	if err != nil {
		return fmt.Errorf("list opportunities: %w", err)
	}

	if flagJSON {
		return printJSON(opps)
	}

	printOppTable(store, opps)
	return nil
}

func runOppShow(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	opp, err := newOpportunities(store).Get(args[0])
	if err != nil {
		return fmt.Errorf("get opportunity: %w", err)
	}

	if flagJSON {
		return printJSON(opp)
	}

	printOppDetail(store, opp)
	return nil
}

func runOppMove(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	opp, err := newOpportunities(store).Transition(args[0], args[1])
	if err != nil {
		return fmt.Errorf("move opportunity: %w", err)
	}

	if flagJSON {
		return printJSON(opp)
	}

	fmt.Printf("Moved %s to stage %s (last movement %s)\n",
		opp.Code, shortID(opp.StageID), formatDateCell(opp.LastMovementDate))
	return nil
}

func runOppDelete(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	if err := newOpportunities(store).Delete(args[0]); err != nil {
		return fmt.Errorf("delete opportunity: %w", err)
	}

	if flagJSON {
		fmt.Printf("{\"deleted\": %q}\n", args[0])
		return nil
	}

	fmt.Printf("Deleted opportunity %s\n", args[0])
	return nil
}

// stageTitles returns a stage ID to title map for table rendering.
func stageTitles(store types.Store) map[string]string {
	titles := make(map[string]string)
	stages, err := store.Stages().Fetch()
	if err != nil {
		return titles
	}
	for _, s := range stages {
		titles[s.StageID] = s.Title
	}
	return titles
}

// printOppTable prints opportunities in a human-readable table format.
func printOppTable(store types.Store, opps []*types.Opportunity) {
	if len(opps) == 0 {
		fmt.Println("No opportunities found.")
		return
	}

	titles := stageTitles(store)

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "CODE\tTITLE\tSTAGE\tVALUE\tCONFIDENCE\tNEXT CONTACT")
	fmt.Fprintln(w, "----\t-----\t-----\t-----\t----------\t------------")
	for _, o := range opps {
		stage := titles[o.StageID]
		if stage == "" {
			stage = shortID(o.StageID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
			o.Code,
			truncate(o.Title, 40),
			stage,
			o.TotalValue,
			confidenceCell(o),
			formatDateCell(o.NextContactDate),
		)
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}

	fmt.Printf("Total: %d opportunity(ies)\n", len(opps))
}

// printOppDetail prints one opportunity in full, including line items and
// conversation history.
func printOppDetail(store types.Store, o *types.Opportunity) {
	titles := stageTitles(store)
	stage := titles[o.StageID]
	if stage == "" {
		stage = o.StageID
	}

	fmt.Printf("%s  %s\n", o.Code, o.Title)
	fmt.Printf("  Stage:        %s\n", stage)
	if o.FarmName != "" {
		fmt.Printf("  Farm:         %s\n", o.FarmName)
	}
	if o.Safra != "" {
		fmt.Printf("  Safra:        %s\n", o.Safra)
	}
	fmt.Printf("  Value:        %.2f\n", o.TotalValue)
	fmt.Printf("  Confidence:   %s (%d%%)\n", confidenceCell(o), o.ClosingProbability)
	fmt.Printf("  Created:      %s\n", formatDateCell(o.CreatedAt))
	fmt.Printf("  Last moved:   %s\n", formatDateCell(o.LastMovementDate))
	fmt.Printf("  Closing:      %s\n", formatDateCell(o.ExpectedClosingDate))
	fmt.Printf("  Next contact: %s\n", formatDateCell(o.NextContactDate))

	for _, g := range o.ActivityGroups {
		fmt.Printf("  Activity %s (%d property(ies)):\n", g.Activity, len(g.PropertyIDs))
		for _, item := range g.Items {
			fmt.Printf("    %s x %.2f @ %.2f\n", shortID(item.ItemID), item.Quantity, item.PriceAtTime)
		}
	}

	if o.Description != "" {
		fmt.Printf("  Description:  %s\n", o.Description)
	}

	if len(o.ConversationHistory) > 0 {
		fmt.Println("  History:")
		for _, note := range o.ConversationHistory {
			fmt.Printf("    [%s] %s\n", note.Timestamp, note.Content)
		}
	}

	if o.GeneratedContent != "" {
		fmt.Println("  Generated content:")
		fmt.Printf("    %s\n", o.GeneratedContent)
	}
}
