// Command twcli is a thin smoke-test CLI over package client, useful
// for manually exercising a TW server connection without writing Go.
// It is intentionally minimal: spec.md's non-goals exclude a real
// query/demo experience beyond this.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/triggerware/tw-go-client/internal/config"
)

var (
	flagConfigPath  string
	flagAddress     string
	flagPort        int
	flagNamespace   string
	flagOTel        bool
	flagMetricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "twcli",
	Short: "Smoke-test CLI for the TriggerWare Go client",
	// PersistentPreRunE loads the config file once, then fills in any
	// flag the caller did not set on the command line from the loaded
	// config (an explicit flag always wins).
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(flagConfigPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		flags := cmd.Flags()
		if !flags.Changed("address") {
			flagAddress = config.Global.Address
		}
		if !flags.Changed("port") {
			flagPort = config.Global.Port
		}
		if !flags.Changed("namespace") {
			flagNamespace = config.Global.Namespace
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to config.yaml (defaults to ~/.tw-go-client/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagAddress, "address", "localhost", "TW server address")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 8282, "TW server port")
	rootCmd.PersistentFlags().StringVar(&flagNamespace, "namespace", "", "default query namespace")
	rootCmd.PersistentFlags().BoolVar(&flagOTel, "otel", false, "export traces/metrics to stdout")
	rootCmd.PersistentFlags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	rootCmd.AddCommand(noopCmd, queryCmd, validateCmd, runtimeCmd, reldataCmd, pollCmd, subscribeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
