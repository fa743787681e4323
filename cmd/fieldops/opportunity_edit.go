// Opportunity edit commands: field updates, engagement notes, scheduling,
// and generated proposal/follow-up text.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agrovista/fieldops/internal/gentext"
	"github.com/agrovista/fieldops/internal/pipeline"
	"github.com/agrovista/fieldops/pkg/types"
)

var (
	editTitle       string
	editSafra       string
	editProbability int
	editExpected    string
	editValidity    string
	editDescription string
	editNotes       string

	noteContent  string
	scheduleDate string
	generateKind string
)

var oppUpdateCmd = &cobra.Command{
	Use:   "update <opportunity-id>",
	Short: "Update an opportunity's editable fields",
	Long: `Update rewrites the editable fields of an opportunity. The stage,
code, creation date, and conversation history never change through update;
use "opportunity move", "opportunity note", and "opportunity schedule" for
those.

Example:
  fieldops opportunity update <id> --probability 85
  fieldops opportunity update <id> --title "Soy + cotton package" --safra 2026/27`,
	Args: cobra.ExactArgs(1),
	RunE: runOppUpdate,
}

var oppNoteCmd = &cobra.Command{
	Use:   "note <opportunity-id>",
	Short: "Append a note to the conversation history",
	Long: `Note appends a timestamped entry to the opportunity's conversation
history. Notes are append-only; they can never be edited or removed.

Example:
  fieldops opportunity note <id> --content "Called producer, wants revised quote"`,
	Args: cobra.ExactArgs(1),
	RunE: runOppNote,
}

var oppScheduleCmd = &cobra.Command{
	Use:   "schedule <opportunity-id>",
	Short: "Set or clear the next contact date",
	Long: `Schedule sets the next contact date used by forecast --due. An empty
--date clears the schedule.

Example:
  fieldops opportunity schedule <id> --date 2026-09-15
  fieldops opportunity schedule <id> --date ""`,
	Args: cobra.ExactArgs(1),
	RunE: runOppSchedule,
}

var oppGenerateCmd = &cobra.Command{
	Use:   "generate <opportunity-id>",
	Short: "Generate proposal or follow-up text",
	Long: `Generate produces proposal or follow-up message text for an
opportunity via the configured text generator and stores it verbatim on the
opportunity. Without a configured generator the command fails and any
previously stored text is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runOppGenerate,
}

func init() {
	oppUpdateCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	oppUpdateCmd.Flags().StringVar(&editSafra, "safra", "", "new season tag")
	oppUpdateCmd.Flags().IntVar(&editProbability, "probability", 0, "new closing probability 0-100")
	oppUpdateCmd.Flags().StringVar(&editExpected, "expected-closing", "", "new expected closing date (YYYY-MM-DD)")
	oppUpdateCmd.Flags().StringVar(&editValidity, "validity", "", "new proposal validity date (YYYY-MM-DD)")
	oppUpdateCmd.Flags().StringVar(&editDescription, "description", "", "new description")
	oppUpdateCmd.Flags().StringVar(&editNotes, "internal-notes", "", "new internal notes")

	oppNoteCmd.Flags().StringVar(&noteContent, "content", "", "note content (required)")
	_ = oppNoteCmd.MarkFlagRequired("content")

	oppScheduleCmd.Flags().StringVar(&scheduleDate, "date", "", "next contact date (YYYY-MM-DD, empty clears)")

	oppGenerateCmd.Flags().StringVar(&generateKind, "kind", string(gentext.KindProposal), "text kind (proposal, followup)")
}

func runOppUpdate(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	engine := newOpportunities(store)

	patch, err := engine.Get(args[0])
	if err != nil {
		return fmt.Errorf("get opportunity: %w", err)
	}

	if cmd.Flags().Changed("title") {
		patch.Title = editTitle
	}
	if cmd.Flags().Changed("safra") {
		patch.Safra = editSafra
	}
	if cmd.Flags().Changed("probability") {
		patch.ClosingProbability = editProbability
	}
	if cmd.Flags().Changed("description") {
		patch.Description = editDescription
	}
	if cmd.Flags().Changed("internal-notes") {
		patch.InternalNotes = editNotes
	}
	if cmd.Flags().Changed("expected-closing") {
		t, err := parseDateFlag(editExpected)
		if err != nil {
			return err
		}
		patch.ExpectedClosingDate = t
	}
	if cmd.Flags().Changed("validity") {
		t, err := parseDateFlag(editValidity)
		if err != nil {
			return err
		}
		patch.ValidityDate = t
	}

	updated, err := engine.Update(args[0], patch)
	if err != nil {
		return fmt.Errorf("update opportunity: %w", err)
	}

	if flagJSON {
		return printJSON(updated)
	}

	fmt.Printf("Updated opportunity %s: %s\n", updated.Code, updated.Title)
	return nil
}

func runOppNote(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	opp, err := pipeline.NewEngagement(store).AppendNote(args[0], noteContent)
	if err != nil {
		return fmt.Errorf("append note: %w", err)
	}

	if flagJSON {
		return printJSON(opp)
	}

	latest := opp.ConversationHistory[0]
	fmt.Printf("Noted on %s [%s]: %s\n", opp.Code, latest.Timestamp, latest.Content)
	return nil
}

func runOppSchedule(cmd *cobra.Command, args []string) error {
	date, err := parseDateFlag(scheduleDate)
	if err != nil {
		return err
	}

	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	opp, err := pipeline.NewEngagement(store).ScheduleNextContact(args[0], date)
	if err != nil {
		return fmt.Errorf("schedule next contact: %w", err)
	}

	if flagJSON {
		return printJSON(opp)
	}

	if opp.NextContactDate.IsZero() {
		fmt.Printf("Cleared next contact for %s\n", opp.Code)
	} else {
		fmt.Printf("Next contact for %s: %s\n", opp.Code, formatDateCell(opp.NextContactDate))
	}
	return nil
}

func runOppGenerate(cmd *cobra.Command, args []string) error {
	kind := gentext.Kind(generateKind)

	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	engine := newOpportunities(store)

	// No external generator is wired into the CLI yet; Disabled keeps the
	// stored text untouched and reports the collaborator as unavailable.
	var gen gentext.Generator = gentext.Disabled{}

	var opp *types.Opportunity
	switch kind {
	case gentext.KindProposal:
		opp, err = engine.GenerateProposal(cmd.Context(), args[0], gen)
	case gentext.KindFollowUp:
		opp, err = engine.GenerateFollowUp(cmd.Context(), args[0], gen)
	default:
		return fmt.Errorf("invalid kind %q (want proposal or followup)", generateKind)
	}
	if err != nil {
		return fmt.Errorf("generate %s: %w", kind, err)
	}

	if flagJSON {
		return printJSON(opp)
	}

	fmt.Println(opp.GeneratedContent)
	return nil
}
