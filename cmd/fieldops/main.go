// Package main provides the fieldops CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/agrovista/fieldops/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code: user errors (bad input,
// missing records) exit 1, system errors (storage failures) exit 2.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrStageNotFound),
		errors.Is(err, types.ErrLastStage),
		errors.Is(err, types.ErrInvalidDirection),
		errors.Is(err, types.ErrEmptyTitle),
		errors.Is(err, types.ErrEmptyContent),
		errors.Is(err, types.ErrEmptyName),
		errors.Is(err, types.ErrInvalidProbability):
		return exitUserError
	default:
		return exitSysError
	}
}
