package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var runtimeCmd = &cobra.Command{
	Use:   "runtime",
	Short: "Print the server's runtime/GC-time/bytes-allocated measure",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		c, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		rm, err := c.GetRuntimeMeasure(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("runtime=%d gc=%d bytes=%d\n", rm.RunTime, rm.GCTime, rm.Bytes)
		return nil
	},
}
