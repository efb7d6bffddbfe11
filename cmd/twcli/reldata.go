package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reldataCmd = &cobra.Command{
	Use:   "reldata",
	Short: "List the server's table catalog, grouped by relation group",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		c, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		groups, err := c.GetRelData(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Printf("%s (%s)\n", g.Name, g.Symbol)
			for _, el := range g.Elements {
				fmt.Printf("  %s\n", el.Name)
			}
		}
		return nil
	},
}
