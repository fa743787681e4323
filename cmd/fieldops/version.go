// Version command for the fieldops CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agrovista/fieldops/pkg/fieldops"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fieldops version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fieldops", fieldops.Version)
	},
}
