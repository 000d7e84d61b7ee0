package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/attrition/internal/probe"
)

// Default configuration constants.
const (
	defaultNumRecords = 1000
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultResubmit   = 50
	defaultRunTimeout = 10 * time.Minute
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit random employees and verify the answers",
	Long:  "Generates random employees inside every field's domain, submits them concurrently, checks each answer and re-submits a sample to confirm the answers are repeatable.",
	RunE:  runProbe,
}

var (
	runRecords  int
	runWorkers  int
	runTimeout  time.Duration
	runOutput   string
	runSeed     uint64
	runResubmit int
	runVerbose  bool
)

func init() {
	runCmd.Flags().IntVarP(&runRecords, "records", "n", defaultNumRecords, "Number of records to generate and submit")
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", defaultTimeout, "HTTP request timeout")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Save generated records to this JSON file")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "Generator seed (0 picks one from the clock)")
	runCmd.Flags().IntVar(&runResubmit, "resubmit", defaultResubmit, "Records re-submitted for the idempotence check")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Log every failed record")

	rootCmd.AddCommand(runCmd)
}

func runProbe(cmd *cobra.Command, _ []string) error {
	if runRecords <= 0 {
		return fmt.Errorf("--records must be positive, got %d", runRecords)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL:    baseURL,
		NumRecords: runRecords,
		Workers:    runWorkers,
		Timeout:    runTimeout,
		OutputFile: runOutput,
		Seed:       runSeed,
		Resubmit:   runResubmit,
		Verbose:    runVerbose,
	}

	if _, err := probe.Run(ctx, config); err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	return nil
}
