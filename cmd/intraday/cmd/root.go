package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intraday",
	Short: "An intraday futures position backtester",
	Long: `Intraday replays minute-resolution price history against a list of
candidate orders, one trading day at a time.

It provides tools for:
  - Simulating position entry, sizing, and layered exit rules
  - Compounding realized P/L across trading days
  - Monthly and yearly P/L and return reporting
  - Journaling settled positions to CSV or SQLite`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	// A local .env may carry paths and overrides; absence is fine.
	_ = godotenv.Load()
	return rootCmd.Execute()
}
