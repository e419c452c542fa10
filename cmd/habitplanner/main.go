package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "habitplanner",
	Short: "Personal backlog, daily board, routines and sprints",
	Long: `habitplanner keeps a task backlog, a daily board with a 05:00 cutover,
recurring routines with goals, and sprints.

Examples:
  # Run the HTTP API, the scheduler and (when configured) the Telegram bot
  habitplanner serve --config config.yaml

  # Expand routines for a date
  habitplanner generate 2025-01-10

  # Print today's digest
  habitplanner digest`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.AddCommand(serveCmd, generateCmd, digestCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
