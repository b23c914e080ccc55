package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alexpicon/sneakerdb/internal/dump"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the whole catalog to a compressed dump file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if err := dump.Export(cmd.Context(), store, f); err != nil {
			return err
		}
		color.Green("✓ exported catalog to %s", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a catalog dump, then rebuild the search index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		count, err := dump.Import(cmd.Context(), store, openIndex(store), f)
		if err != nil {
			return err
		}
		color.Green("✓ imported %d entries from %s", count, args[0])
		return nil
	},
}
