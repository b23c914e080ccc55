package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var addBrand string

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List brands, or add one with --add",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if addBrand != "" {
			if err := store.InsertBrand(cmd.Context(), addBrand); err != nil {
				return err
			}
			color.Green("✓ added brand %s", addBrand)
			return nil
		}

		brands, err := store.ListBrands(cmd.Context())
		if err != nil {
			return err
		}
		for _, b := range brands {
			fmt.Println(b)
		}
		return nil
	},
}

func init() {
	brandsCmd.Flags().StringVar(&addBrand, "add", "", "brand name to add")
}
