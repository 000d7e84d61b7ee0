// Package main provides the attrition-probe CLI, which exercises a running
// attrition predictor over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/attrition/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "attrition-probe",
	Short: "Exercise a running attrition predictor",
	Long:  "attrition-probe submits random in-domain employees to a running attrition predictor and verifies every answer.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.Init(logger.WithFormat(logFormat)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return logger.SetLevelString(logLevel)
	},
	SilenceUsage: true,
}

var (
	baseURL   string
	logFormat string
	logLevel  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("ATTRITION_PROBE_URL", "http://localhost:9080"), "Base URL of the service")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
