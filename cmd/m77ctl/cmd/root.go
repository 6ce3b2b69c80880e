// Package cmd provides the m77ctl commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"m77ag-backend/app"
	"m77ag-backend/config"
	"m77ag-backend/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "m77ctl",
	Short: "Run M77 AG billing jobs and spray quotes from a shell",
	Long: `m77ctl runs the same jobs the API server schedules, on demand.

Examples:
  m77ctl invoices generate --month 4 --year 2024
  m77ctl late-fees apply --as-of 2024-04-10
  m77ctl reminders send
  m77ctl spray quote --file program.json --acres 500
  m77ctl gen-secret`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file to load")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(lateFeesCmd)
	rootCmd.AddCommand(remindersCmd)
	rootCmd.AddCommand(sprayCmd)
	rootCmd.AddCommand(secretCmd)
}

func initLogging() {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}
	level := os.Getenv("LOG_LEVEL")
	if verbose {
		level = "debug"
	}
	logger.InitLogger(os.Getenv("STAGE"), level)
}

// openApp loads settings and connects to the database.
func openApp() (*app.App, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.New(settings)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
