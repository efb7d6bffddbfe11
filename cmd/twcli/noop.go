package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var noopCmd = &cobra.Command{
	Use:   "noop",
	Short: "Send a noop call to check the server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		c, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.Noop(ctx); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}
