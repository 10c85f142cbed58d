package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	goodColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	badColor    = color.New(color.FgRed)
	labelColor  = color.New(color.Bold)
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "quote-service",
	Short: "Quote fabrication jobs and keep their history",
	Long: `quote-service prices fabrication jobs from material, complexity and
quantity, applies the shop's margin and rush fee, and stores every quote in
the jobs table, or locally when the database is unavailable.

Configuration comes from environment variables (DATABASE_URL, REDIS_URL,
QUOTE_PORT, QUOTE_GRPC_PORT, LOCAL_STORE_PATH, JOBS_TABLE, OPENAI_API_KEY, ...).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, quoteCmd, setupDBCmd, pricesCmd)
}
