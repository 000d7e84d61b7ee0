package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/attrition/internal/probe"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the field list the service expects",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := &probe.Config{BaseURL: baseURL, Timeout: defaultTimeout}
		if err := probe.PrintSchema(cmd.Context(), config, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to fetch schema: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
