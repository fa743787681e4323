// Catalog commands manage the sellable product and service catalog.
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
	catalogName     string
	catalogCategory string
	catalogUnit     string
	catalogPrice    float64
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the product and service catalog",
	Long: `Catalog manages sellable items. Deactivated items remain in storage
so historical line items keep their snapshot prices, but they no longer
resolve a price for new line items.`,
}

var catalogAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a catalog item",
	Long: `Add registers an active catalog item.

Example:
  fieldops catalog add --name "Soil analysis" --unit hectare --price 12.50`,
	RunE: runCatalogAdd,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogDeactivateCmd = &cobra.Command{
	Use:   "deactivate <item-id>",
	Short: "Deactivate a catalog item",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogDeactivate,
}

func init() {
	catalogAddCmd.Flags().StringVar(&catalogName, "name", "", "item name (required)")
	catalogAddCmd.Flags().StringVar(&catalogCategory, "category", "", "item category")
	catalogAddCmd.Flags().StringVar(&catalogUnit, "unit", "", "unit of sale, e.g. bag, liter, hectare")
	catalogAddCmd.Flags().Float64Var(&catalogPrice, "price", 0, "unit price (required)")
	_ = catalogAddCmd.MarkFlagRequired("name")
	_ = catalogAddCmd.MarkFlagRequired("price")

	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogDeactivateCmd)
}

func runCatalogAdd(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	item := &types.CatalogItem{
		Name:      catalogName,
		Category:  catalogCategory,
		Unit:      catalogUnit,
		Price:     catalogPrice,
		Active:    true,
		CreatedAt: time.Now(),
	}

	id, err := store.Catalog().Put(item)
	if err != nil {
		return fmt.Errorf("create catalog item: %w", err)
	}

	if flagJSON {
		return printJSON(item)
	}

	fmt.Printf("Created catalog item %s: %s\n", shortID(id), item.Name)
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	items, err := store.Catalog().Fetch()
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}

	if flagJSON {
		return printJSON(items)
	}

	if len(items) == 0 {
		fmt.Println("No catalog items found.")
		return nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tUNIT\tPRICE\tACTIVE")
	fmt.Fprintln(w, "--\t----\t--------\t----\t-----\t------")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%t\n",
			shortID(item.ItemID), item.Name, item.Category, item.Unit, item.Price, item.Active)
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}

	fmt.Printf("Total: %d item(s)\n", len(items))
	return nil
}

func runCatalogDeactivate(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	item, err := store.Catalog().Get(args[0])
	if err != nil {
		return fmt.Errorf("get catalog item: %w", err)
	}

	item.Active = false
	if _, err := store.Catalog().Put(item); err != nil {
		return fmt.Errorf("deactivate catalog item: %w", err)
	}

	if flagJSON {
		return printJSON(item)
	}

	fmt.Printf("Deactivated catalog item %s: %s\n", shortID(item.ItemID), item.Name)
	return nil
}
