package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/triggerware/tw-go-client/client"
)

var (
	flagQueryLanguage string
	flagQueryLimit    int
)

var queryCmd = &cobra.Command{
	Use:   "query <query-text>",
	Short: "Run a one-shot query and print its rows as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		c, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		var restriction *client.Restriction
		if flagQueryLimit > 0 {
			limit := flagQueryLimit
			restriction = &client.Restriction{Limit: &limit}
		}

		rs, err := client.ExecuteQuery[json.RawMessage](ctx, c, args[0], flagQueryLanguage, restriction)
		if err != nil {
			return err
		}
		defer rs.Dispose(ctx)

		for {
			ok, err := rs.MoveNext(ctx)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			row, _ := rs.Current()
			fmt.Println(string(row))
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&flagQueryLanguage, "language", "sql", "query language (sql or fol)")
	queryCmd.Flags().IntVar(&flagQueryLimit, "limit", 0, "row limit (0 means server default)")
}
