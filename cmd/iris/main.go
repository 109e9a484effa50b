// Command iris is the automation-shim CLI over the Job API: submit a
// company for analysis, poll status, fetch results, cancel, or run the
// HTTP server directly. Exit codes follow spec.md §6: 0 success, 2 bad
// arguments, 3 upstream failure, 4 timeout, 5 cancelled.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "iris"
	version = "v0.1.0"
)

const (
	exitSuccess        = 0
	exitBadArguments   = 2
	exitUpstreamFailed = 3
	exitTimeout        = 4
	exitCancelled      = 5
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "IRIS financial forensics engine",
		Version: version,
		Long: `IRIS analyzes listed companies' financial statements for forensic
red flags, risk, and compliance issues.

Run 'iris submit <symbol>' to start an analysis job, then 'iris status'
or 'iris result' to follow it, or 'iris serve' to run the Job API.`,
	}

	rootCmd.PersistentFlags().String("config", "", "path to engine config YAML (defaults built in if omitted)")
	rootCmd.PersistentFlags().String("api", "http://localhost:8090", "Job API base URL for submit/status/cancel/result")
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Minute, "overall command timeout")

	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCancelCmd())
	rootCmd.AddCommand(newResultCmd())
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(exitBadArguments)
	}
}
