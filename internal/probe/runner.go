package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// PercentageMultiplier converts a ratio to a percentage.
const PercentageMultiplier = 100

// Run executes a complete probe: health check, schema check, submission,
// verification, idempotence check and optional save.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("probe")

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.Info(ctx, "starting attrition probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("records", config.NumRecords),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Any("seed", seed))

	client := NewHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, err
	}

	// Step 2: Compare the server schema with ours
	if err := checkSchema(ctx, client, employee.Fields); err != nil {
		return stats, err
	}

	// Step 3: Generate records
	samples := NewGenerator(employee.Fields, seed).Samples(config.NumRecords)
	stats.RecordsGenerated = len(samples)

	// Step 4: Submit concurrently and verify each answer
	outcomes, err := submitAll(ctx, client, samples, config.Workers)
	if err != nil {
		return stats, err
	}
	tally(outcomes, stats, config.Verbose, log)

	// Step 5: Re-submit a sample and compare
	checkIdempotence(ctx, client, outcomes, config.Resubmit, stats, log)

	// Step 6: Save records
	if config.OutputFile != "" {
		if err := SaveSamples(config.OutputFile, samples); err != nil {
			log.Warn(ctx, "failed to save records", logger.Error(err))
		} else {
			log.Info(ctx, "records saved", logger.String("filename", config.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats, log)

	if stats.Failed > 0 || stats.IdempotenceMismatches > 0 {
		return stats, fmt.Errorf("%w: %d failed records, %d idempotence mismatches",
			ErrVerification, stats.Failed, stats.IdempotenceMismatches)
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// checkSchema verifies that the server expects the same columns as we do.
func checkSchema(ctx context.Context, client *HTTPClient, local employee.Schema) error {
	remote, err := client.Schema(ctx)
	if err != nil {
		return err
	}
	if len(remote.Fields) != len(local) {
		return fmt.Errorf("%w: server has %d fields, local %d", ErrSchemaDrift, len(remote.Fields), len(local))
	}
	for i, f := range remote.Fields {
		if f.Name != local[i].Name || f.Key != local[i].Key {
			return fmt.Errorf("%w: field %d is %q/%q on the server", ErrSchemaDrift, i, f.Name, f.Key)
		}
	}
	return nil
}

// submitAll posts every sample with at most workers requests in flight.
// Per-record failures are recorded in the outcome; only context
// cancellation aborts the run.
func submitAll(ctx context.Context, client *HTTPClient, samples []Sample, workers int) ([]Outcome, error) {
	outcomes := make([]Outcome, len(samples))
	var done atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range samples {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			outcomes[i] = submitOne(gCtx, client, samples[i])
			if n := done.Add(1); n%100 == 0 || int(n) == len(samples) {
				fmt.Printf("\r📤 Submitted: %d/%d", n, len(samples))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("submission aborted: %w", err)
	}
	if len(samples) > 0 {
		fmt.Println()
	}
	return outcomes, nil
}

func submitOne(ctx context.Context, client *HTTPClient, s Sample) Outcome {
	out := Outcome{Sample: s}
	status, resp, err := client.Predict(ctx, s)
	out.Status = status
	if err != nil {
		out.Err = err
		return out
	}
	if resp == nil {
		out.Err = fmt.Errorf("%w: status %d", ErrUnexpected, status)
		return out
	}
	if err := verifyResponse(s, resp); err != nil {
		out.Err = err
		return out
	}
	out.Label = string(resp.Label)
	out.Stay = resp.ProbabilityStay
	out.Leave = resp.ProbabilityLeave
	return out
}

func tally(outcomes []Outcome, stats *Stats, verbose bool, log logger.Logger) {
	ctx := context.Background()
	for _, o := range outcomes {
		stats.Submitted++
		if o.Err != nil {
			stats.Failed++
			if verbose {
				log.Warn(ctx, "record failed", logger.String("id", o.Sample.ID), logger.Error(o.Err))
			}
			continue
		}
		stats.Successful++
		if o.Label == "Leave" {
			stats.LeaveCount++
		} else {
			stats.StayCount++
		}
		if o.Stay == nil {
			stats.WithoutProbability++
		}
	}
}

// checkIdempotence re-submits up to n successful records under fresh ids
// and compares the answers.
func checkIdempotence(ctx context.Context, client *HTTPClient, outcomes []Outcome, n int, stats *Stats, log logger.Logger) {
	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, o := range outcomes {
		if n <= 0 {
			break
		}
		if o.Err != nil {
			continue
		}
		n--
		g.Go(func() error {
			again := submitOne(gCtx, client, Sample{ID: uuid.NewString(), Input: o.Sample.Input})
			err := again.Err
			if err == nil {
				err = sameAnswer(o, again)
			}
			mu.Lock()
			defer mu.Unlock()
			stats.IdempotenceChecked++
			if err != nil {
				stats.IdempotenceMismatches++
				log.Warn(gCtx, "idempotence check failed", logger.String("id", o.Sample.ID), logger.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// SaveSamples writes the samples as a JSON array.
func SaveSamples(filename string, samples []Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("no records to save")
	}
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// PrintSchema fetches the server schema and writes it to w.
func PrintSchema(ctx context.Context, config *Config, w io.Writer) error {
	client := NewHTTPClient(config.BaseURL, config.Timeout)
	s, err := client.Schema(ctx)
	if err != nil {
		return err
	}
	for i, f := range s.Fields {
		domain := fmt.Sprintf("%d-%d", f.Min, f.Max)
		if f.Kind == employee.KindCategory {
			domain = fmt.Sprint(f.Choices)
		} else if f.Step > 1 {
			domain += fmt.Sprintf(" step %d", f.Step)
		}
		if _, err := fmt.Fprintf(w, "%2d. %-26s %-26s %s (default %v)\n", i+1, f.Name, f.Key, domain, f.Default); err != nil {
			return err
		}
	}
	return nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, stats *Stats, log logger.Logger) {
	var successRate, recordsPerSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		recordsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("recordsGenerated", stats.RecordsGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("leave", stats.LeaveCount),
		logger.Int("stay", stats.StayCount),
		logger.Int("withoutProbability", stats.WithoutProbability),
		logger.Int("idempotenceChecked", stats.IdempotenceChecked),
		logger.Int("idempotenceMismatches", stats.IdempotenceMismatches),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("recordsPerSecond", recordsPerSecond))
}
