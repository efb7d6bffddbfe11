package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagValidateLanguage string
	flagValidateSchema   string
)

var validateCmd = &cobra.Command{
	Use:   "validate <query-text>",
	Short: "Validate a query against the server without executing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		c, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		result, err := c.ValidateQuery(ctx, args[0], flagValidateLanguage, flagValidateSchema)
		if err != nil {
			return err
		}
		fmt.Println(result)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&flagValidateLanguage, "language", "sql", "query language (sql or fol)")
	validateCmd.Flags().StringVar(&flagValidateSchema, "schema", "", "schema name to validate against")
}
