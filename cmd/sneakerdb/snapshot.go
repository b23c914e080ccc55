package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alexpicon/sneakerdb/internal/snapshot"
)

var restoreTo string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Take a consistent snapshot of the catalog and ship it to storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := openSnapshotter(cmd.Context(), store)
		if err != nil {
			return err
		}

		objectPath, err := snap.Create(cmd.Context())
		if err != nil {
			return err
		}
		color.Green("✓ snapshot %s", objectPath)
		return nil
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List available snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openSnapshotStorage(cmd.Context())
		if err != nil {
			return err
		}
		snap := snapshot.New(nil, backend, snapshotOptions())

		objects, err := snap.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, obj := range objects {
			fmt.Println(obj)
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <object>",
	Short: "Restore a snapshot to a new database file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Restoring must not touch (or create) the live database.
		backend, err := openSnapshotStorage(cmd.Context())
		if err != nil {
			return err
		}
		snap := snapshot.New(nil, backend, snapshotOptions())

		if err := snap.Restore(cmd.Context(), args[0], restoreTo); err != nil {
			return err
		}
		color.Green("✓ restored %s to %s", args[0], restoreTo)
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVar(&restoreTo, "to", "restored-sneakers.db", "destination database file (must not exist)")
}
