// Visit commands log field visits to producers.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrovista/fieldops/pkg/types"
)

var (
	visitProducer string
	visitProperty string
	visitDate     string
	visitSummary  string
	visitRecs     string
)

var visitCmd = &cobra.Command{
	Use:   "visit",
	Short: "Log and list field visits",
}

var visitAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a field visit",
	Long: `Add logs a visit to a producer, optionally tied to one property.
Without --date the visit is stamped with today.

Example:
  fieldops visit add --producer <id> --summary "Soil sampling on north plots"
  fieldops visit add --producer <id> --property <pid> --date 2026-08-20`,
	RunE: runVisitAdd,
}

var visitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visits, optionally for one producer",
	Args:  cobra.NoArgs,
	RunE:  runVisitList,
}

func init() {
	visitAddCmd.Flags().StringVar(&visitProducer, "producer", "", "producer ID (required)")
	visitAddCmd.Flags().StringVar(&visitProperty, "property", "", "property ID")
	visitAddCmd.Flags().StringVar(&visitDate, "date", "", "visit date (YYYY-MM-DD, default today)")
	visitAddCmd.Flags().StringVar(&visitSummary, "summary", "", "what was observed")
	visitAddCmd.Flags().StringVar(&visitRecs, "recommendations", "", "agronomic recommendations")
	_ = visitAddCmd.MarkFlagRequired("producer")

	visitListCmd.Flags().StringVar(&visitProducer, "producer", "", "filter by producer ID")

	visitCmd.AddCommand(visitAddCmd)
	visitCmd.AddCommand(visitListCmd)
}

func runVisitAdd(cmd *cobra.Command, args []string) error {
	date, err := parseDateFlag(visitDate)
	if err != nil {
		return err
	}

	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	if _, err := store.Producers().Get(visitProducer); err != nil {
		return fmt.Errorf("get producer: %w", err)
	}

	visit := &types.Visit{
		ProducerID:      visitProducer,
		PropertyID:      visitProperty,
		VisitDate:       date,
		Summary:         visitSummary,
		Recommendations: visitRecs,
		CreatedAt:       time.Now(),
	}

	id, err := store.Visits().Put(visit)
	if err != nil {
		return fmt.Errorf("log visit: %w", err)
	}

	if flagJSON {
		return printJSON(visit)
	}

	fmt.Printf("Logged visit %s on %s\n", shortID(id), formatDateCell(visit.VisitDate))
	return nil
}

func runVisitList(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	visits, err := store.Visits().Fetch(visitProducer)
	if err != nil {
		return fmt.Errorf("list visits: %w", err)
	}

	if flagJSON {
		return printJSON(visits)
	}

	if len(visits) == 0 {
		fmt.Println("No visits found.")
		return nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tDATE\tPRODUCER\tSUMMARY")
	fmt.Fprintln(w, "--\t----\t--------\t-------")
	for _, v := range visits {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			shortID(v.VisitID),
			formatDateCell(v.VisitDate),
			shortID(v.ProducerID),
			truncate(v.Summary, 50),
		)
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}

	fmt.Printf("Total: %d visit(s)\n", len(visits))
	return nil
}
