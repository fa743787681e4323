// Producer and property commands manage the client directory.
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
	producerName  string
	producerFarm  string
	producerEmail string
	producerPhone string

	propertyProducer string
	propertyName     string
	propertyCity     string
	propertyState    string
	propertyArea     float64
)

var producerCmd = &cobra.Command{
	Use:   "producer",
	Short: "Manage producer (client) records",
}

var producerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new producer",
	Long: `Add creates a producer record. Opportunities cache the farm name at
creation time, so renaming a producer later does not rewrite old deals.

Example:
  fieldops producer add --name "João Almeida" --farm "Fazenda Santa Rita"`,
	RunE: runProducerAdd,
}

var producerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List producers",
	Args:  cobra.NoArgs,
	RunE:  runProducerList,
}

var producerDeleteCmd = &cobra.Command{
	Use:   "delete <producer-id>",
	Short: "Delete a producer",
	Args:  cobra.ExactArgs(1),
	RunE:  runProducerDelete,
}

var propertyCmd = &cobra.Command{
	Use:   "property",
	Short: "Manage rural property records",
}

var propertyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a property for a producer",
	Long: `Add registers a rural property. The area is a recorded value, not
computed from boundaries.

Example:
  fieldops property add --producer <id> --name "Talhão Norte" --area 320.5`,
	RunE: runPropertyAdd,
}

var propertyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List properties, optionally for one producer",
	Args:  cobra.NoArgs,
	RunE:  runPropertyList,
}

func init() {
	producerAddCmd.Flags().StringVar(&producerName, "name", "", "producer name (required)")
	producerAddCmd.Flags().StringVar(&producerFarm, "farm", "", "farm name")
	producerAddCmd.Flags().StringVar(&producerEmail, "email", "", "email address")
	producerAddCmd.Flags().StringVar(&producerPhone, "phone", "", "phone number")
	_ = producerAddCmd.MarkFlagRequired("name")

	propertyAddCmd.Flags().StringVar(&propertyProducer, "producer", "", "producer ID (required)")
	propertyAddCmd.Flags().StringVar(&propertyName, "name", "", "property name (required)")
	propertyAddCmd.Flags().StringVar(&propertyCity, "city", "", "city")
	propertyAddCmd.Flags().StringVar(&propertyState, "state", "", "state")
	propertyAddCmd.Flags().Float64Var(&propertyArea, "area", 0, "area in hectares")
	_ = propertyAddCmd.MarkFlagRequired("producer")
	_ = propertyAddCmd.MarkFlagRequired("name")

	propertyListCmd.Flags().StringVar(&propertyProducer, "producer", "", "filter by producer ID")

	producerCmd.AddCommand(producerAddCmd)
	producerCmd.AddCommand(producerListCmd)
	producerCmd.AddCommand(producerDeleteCmd)

	propertyCmd.AddCommand(propertyAddCmd)
	propertyCmd.AddCommand(propertyListCmd)
}

func runProducerAdd(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	producer := &types.Producer{
		Name:      producerName,
		FarmName:  producerFarm,
		Email:     producerEmail,
		Phone:     producerPhone,
		CreatedAt: time.Now(),
	}

	id, err := store.Producers().Put(producer)
	if err != nil {
		return fmt.Errorf("create producer: %w", err)
	}

	if flagJSON {
		return printJSON(producer)
	}

	fmt.Printf("Created producer %s: %s\n", shortID(id), producer.Name)
	return nil
}

func runProducerList(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	producers, err := store.Producers().Fetch()
	if err != nil {
		return fmt.Errorf("list producers: %w", err)
	}

	if flagJSON {
		return printJSON(producers)
	}

	if len(producers) == 0 {
		fmt.Println("No producers found.")
		return nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tNAME\tFARM\tPHONE")
	fmt.Fprintln(w, "--\t----\t----\t-----")
	for _, p := range producers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(p.ProducerID), p.Name, p.FarmName, p.Phone)
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}

	fmt.Printf("Total: %d producer(s)\n", len(producers))
	return nil
}

func runProducerDelete(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	if err := store.Producers().Delete(args[0]); err != nil {
		return fmt.Errorf("delete producer: %w", err)
	}

	fmt.Printf("Deleted producer %s\n", args[0])
	return nil
}

func runPropertyAdd(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	// The producer must exist before a property can reference it.
	if _, err := store.Producers().Get(propertyProducer); err != nil {
		return fmt.Errorf("get producer: %w", err)
	}

	property := &types.Property{
		ProducerID:   propertyProducer,
		Name:         propertyName,
		City:         propertyCity,
		State:        propertyState,
		AreaHectares: propertyArea,
		CreatedAt:    time.Now(),
	}

	id, err := store.Properties().Put(property)
	if err != nil {
		return fmt.Errorf("create property: %w", err)
	}

	if flagJSON {
		return printJSON(property)
	}

	fmt.Printf("Created property %s: %s\n", shortID(id), property.Name)
	return nil
}

func runPropertyList(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	properties, err := store.Properties().Fetch(propertyProducer)
	if err != nil {
		return fmt.Errorf("list properties: %w", err)
	}

	if flagJSON {
		return printJSON(properties)
	}

	if len(properties) == 0 {
		fmt.Println("No properties found.")
		return nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tNAME\tCITY\tSTATE\tAREA (HA)")
	fmt.Fprintln(w, "--\t----\t----\t-----\t---------")
	for _, p := range properties {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\n", shortID(p.PropertyID), p.Name, p.City, p.State, p.AreaHectares)
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}

	fmt.Printf("Total: %d property(ies)\n", len(properties))
	return nil
}
