package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <terms...>",
	Short: "Full-text search over names, brands, silhouettes, colorways, and SKUs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		limit := searchLimit
		if limit <= 0 {
			limit = cfg.Search.Limit
		}

		results, err := openIndex(store).Query(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}

		for _, r := range results {
			fmt.Printf("%8.3f  %s\n", r.Score, r.SKU)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum number of results (default from config)")
}
