package main

import (
	"fmt"
	"os"

	"checkout-service/client"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "checkout-cli",
		Short:   "Buy a book from a running checkout server",
		Version: Version,
	}
	rootCmd.PersistentFlags().String("server", "http://localhost:3000", "Checkout server base URL")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout, 0 waits indefinitely")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log controller events")

	rootCmd.AddCommand(buyCmd())
	rootCmd.AddCommand(itemsCmd())
	return rootCmd
}

func orchestrator(cmd *cobra.Command) *client.Orchestrator {
	server, _ := cmd.Flags().GetString("server")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return client.NewOrchestrator(server, timeout)
}
