package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:   "images <sku>",
	Short: "List a sneaker's 360 image frames in display order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		images, err := store.ListImages(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		for _, img := range images {
			fmt.Printf("%3d  %s\n", img.Position, img.Image)
		}
		return nil
	},
}
