package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var addGender string

var gendersCmd = &cobra.Command{
	Use:   "genders",
	Short: "List genders, or add one with --add",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if addGender != "" {
			if err := store.InsertGender(cmd.Context(), addGender); err != nil {
				return err
			}
			color.Green("✓ added gender %s", addGender)
			return nil
		}

		genders, err := store.ListGenders(cmd.Context())
		if err != nil {
			return err
		}
		for _, g := range genders {
			fmt.Println(g)
		}
		return nil
	},
}

func init() {
	gendersCmd.Flags().StringVar(&addGender, "add", "", "gender name to add")
}
