package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [date]",
	Short: "Expand routines into daily tasks for a date (default: business date)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		date := a.clock.BusinessDate()
		if len(args) == 1 {
			date = args[0]
		}
		created, err := a.routines.Expand(cmd.Context(), date)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d task(s) created\n", date, created)
		return nil
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Print the digest of the current business date",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		text, err := a.digest.Summary(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "database %s is up to date\n", a.cfg.DatabaseURL)
		return nil
	},
}
