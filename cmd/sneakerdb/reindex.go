package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild and optimize the full-text search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ix := openIndex(store)
		if err := ix.Rebuild(cmd.Context()); err != nil {
			return err
		}
		if err := ix.Optimize(cmd.Context()); err != nil {
			return err
		}

		count, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		color.Green("✓ reindexed %d sneakers", count)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the search index against the sneakers table",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := openIndex(store).IntegrityCheck(cmd.Context()); err != nil {
			return err
		}
		color.Green("✓ search index is consistent")
		return nil
	},
}
