package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var envFile string

	root := &cobra.Command{
		Use:           "namegen",
		Short:         "namegen: budget-aware Chinese name generation",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading config")

	root.AddCommand(
		newServeCmd(),
		newGenerateCmd(),
		newBatchCmd(),
		newBudgetCmd(),
		newStatsCmd(),
		newEventsCmd(),
		newMCPCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnvFile loads path if it exists. Variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
