package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/triggerware/tw-go-client/client"
)

var (
	flagPollLanguage string
	flagPollInterval int
)

var pollCmd = &cobra.Command{
	Use:   "poll <query-text>",
	Short: "Register a polled query and print notifications until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		c, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		opts := client.PolledQueryOptions{}
		if flagPollInterval > 0 {
			opts.Schedule = &client.Schedule{
				Entries: []client.ScheduleEntry{{IntervalSeconds: flagPollInterval}},
			}
		}

		pq, err := client.NewPolledQuery[json.RawMessage](ctx, c, args[0], flagPollLanguage, "", opts, nil)
		if err != nil {
			return err
		}
		defer pq.Dispose(context.Background())

		fmt.Printf("polling as %s, press ctrl-c to stop\n", pq.Label())
		<-ctx.Done()
		return nil
	},
}

func init() {
	pollCmd.Flags().StringVar(&flagPollLanguage, "language", "sql", "query language (sql or fol)")
	pollCmd.Flags().IntVar(&flagPollInterval, "interval", 0, "poll interval in seconds (0 uses the server default schedule)")
}
