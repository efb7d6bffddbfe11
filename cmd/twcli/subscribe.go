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

var flagSubscribeLanguage string

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <query-text>",
	Short: "Activate a subscription and print tuple notifications until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		c, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		sub := client.NewSubscription[json.RawMessage](c, args[0], flagSubscribeLanguage, "", &printingHandler{})
		if err := sub.Activate(ctx); err != nil {
			return err
		}
		defer sub.Dispose(context.Background())

		fmt.Printf("subscribed as %s, press ctrl-c to stop\n", sub.Label())
		<-ctx.Done()
		return nil
	},
}

func init() {
	subscribeCmd.Flags().StringVar(&flagSubscribeLanguage, "language", "sql", "query language (sql or fol)")
}

// printingHandler prints each notified tuple as raw JSON.
type printingHandler struct{}

func (h *printingHandler) HandleNotification(tuple json.RawMessage) {
	fmt.Println(string(tuple))
}
