package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the catalog database and schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Opening applies the schema idempotently.
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		color.Green("✓ catalog ready at %s", store.Path())
		return nil
	},
}
