package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tapway/valuation-engine/internal/model"
	"github.com/tapway/valuation-engine/internal/valuation"
)

var batchCmd = &cobra.Command{
	Use:   "batch <glob>...",
	Short: "Value a batch of company records",
	Long: `Value every JSON record matched by the given glob patterns and write
one result per line (NDJSON). Records are processed concurrently up to
batch.max_concurrent; a record that fails to parse or validate is reported
and skipped without aborting the run.

Examples:
  # Standard valuations for a portfolio directory
  batch 'portfolio/*.json' --variant standard --output results.ndjson

  # Enterprise tier with failures listed at the end
  batch 'deals/*.json' --variant enterprise`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.String("variant", "standard", "valuation variant: free, standard, or enterprise")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(batchCmd)
}

type batchFailure struct {
	Path string
	Err  error
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	variantFlag, _ := cmd.Flags().GetString("variant")
	outputPath, _ := cmd.Flags().GetString("output")

	variant, err := model.ParseVariant(variantFlag)
	if err != nil {
		return err
	}

	paths, err := expandGlobs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return eris.New("batch: no input files matched")
	}

	eng, cleanup, err := newEngine(ctx, cfg)
	defer cleanup()
	if err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", "batch"))
	log.Info("starting batch valuation",
		zap.Int("files", len(paths)),
		zap.String("variant", string(variant)),
		zap.Int("max_concurrent", cfg.Batch.MaxConcurrent),
	)

	results, failures := valuateAll(ctx, eng, variant, paths, cfg.Batch.MaxConcurrent)

	w, closeOut, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	enc := json.NewEncoder(w)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return eris.Wrap(err, "batch: encode result")
		}
	}

	printBatchSummary(results, failures)
	log.Info("batch valuation complete",
		zap.Int("valued", len(results)),
		zap.Int("failed", len(failures)),
	)
	return nil
}

// valuateAll runs the engine over every file with bounded concurrency.
// Results come back in input order; per-file errors are collected, not fatal.
func valuateAll(ctx context.Context, eng *valuation.Engine, variant model.Variant, paths []string, maxConcurrent int) ([]*model.ValuationResult, []batchFailure) {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	var (
		mu       sync.Mutex
		slots    = make([]*model.ValuationResult, len(paths))
		failures []batchFailure
	)

	g := &errgroup.Group{}
	g.SetLimit(maxConcurrent)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			in, err := readCompanyInput(path)
			if err == nil {
				var res *model.ValuationResult
				res, err = eng.Valuate(variant, *in)
				if err == nil {
					slots[i] = res
					return nil
				}
			}

			zap.L().Warn("batch record failed",
				zap.String("path", path),
				zap.Error(err),
			)
			mu.Lock()
			failures = append(failures, batchFailure{Path: path, Err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	results := make([]*model.ValuationResult, 0, len(paths))
	for _, res := range slots {
		if res != nil {
			results = append(results, res)
		}
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	return results, failures
}

func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "batch: bad glob %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func printBatchSummary(results []*model.ValuationResult, failures []batchFailure) {
	fmt.Fprintf(os.Stderr, "\n--- Summary ---\n")
	fmt.Fprintf(os.Stderr, "Valued:  %d\n", len(results))
	fmt.Fprintf(os.Stderr, "Failed:  %d\n", len(failures))

	if len(results) > 0 {
		var sum int
		minScore, maxScore := 101, -1
		for _, r := range results {
			s := compositeScore(r)
			sum += s
			if s < minScore {
				minScore = s
			}
			if s > maxScore {
				maxScore = s
			}
		}
		fmt.Fprintf(os.Stderr, "Score range:   %d - %d\n", minScore, maxScore)
		fmt.Fprintf(os.Stderr, "Average score: %.1f\n", float64(sum)/float64(len(results)))
	}

	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", f.Path, f.Err)
	}
}
