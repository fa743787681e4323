// Forecast command summarizes the portfolio.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrovista/fieldops/internal/pipeline"
)

var (
	forecastDue     bool
	forecastClosing bool
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Summarize the opportunity portfolio",
	Long: `Forecast aggregates the whole portfolio: total and probability-weighted
pipeline value, per-stage breakdown, and the count of high-confidence deals.

Use --due to list opportunities whose next contact date has arrived, and
--closing to list high-confidence deals with an upcoming expected closing.

Example:
  fieldops forecast
  fieldops forecast --due
  fieldops forecast --closing --json`,
	Args: cobra.NoArgs,
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().BoolVar(&forecastDue, "due", false, "list opportunities due for follow-up")
	forecastCmd.Flags().BoolVar(&forecastClosing, "closing", false, "list upcoming high-confidence closings")
}

func runForecast(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	opps, err := store.Opportunities().Fetch(nil)
	if err != nil {
		return fmt.Errorf("fetch opportunities: %w", err)
	}

	today := time.Now()

	if forecastDue {
		due := pipeline.DueFollowUps(opps, today)
		if flagJSON {
			return printJSON(due)
		}
		printOppTable(store, due)
		return nil
	}

	if forecastClosing {
		closing := pipeline.UpcomingHighConfidence(opps, today)
		if flagJSON {
			return printJSON(closing)
		}
		printOppTable(store, closing)
		return nil
	}

	stages, err := store.Stages().Fetch()
	if err != nil {
		return fmt.Errorf("fetch stages: %w", err)
	}

	forecast := pipeline.Compute(stages, opps)

	if flagJSON {
		return printJSON(forecast)
	}

	printForecast(forecast)
	return nil
}

// printForecast prints the portfolio summary with a per-stage table.
func printForecast(f pipeline.Forecast) {
	fmt.Printf("Total pipeline value:    %.2f\n", f.TotalPipelineValue)
	fmt.Printf("Weighted value:          %.2f\n", f.WeightedValue)
	fmt.Printf("High-confidence deals:   %d\n", f.HighConfidenceCount)
	fmt.Printf("Average probability:     %.1f%%\n", f.AverageProbability)

	if len(f.PerStage) == 0 {
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "STAGE\tDEALS\tVALUE\tWEIGHTED")
	fmt.Fprintln(w, "-----\t-----\t-----\t--------")
	for _, s := range f.PerStage {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\n", s.Title, s.Count, s.TotalValue, s.WeightedValue)
	}
	w.Flush()

	fmt.Println()
	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
}
