package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/carenav/internal/dataset"
	"github.com/sells-group/carenav/internal/model"
	"github.com/sells-group/carenav/internal/pipeline"
	"github.com/sells-group/carenav/internal/store"
)

var (
	runDataset     string
	runOutput      string
	runConcurrency int
	runNoHistory   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every episode in the dataset and write the report bundle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyRunFlags(cmd)
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		var st store.Store
		if !runNoHistory {
			s, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			st = s
		}

		p, err := newPipeline(st)
		if err != nil {
			return err
		}

		res, err := p.RunAll(ctx)
		if err != nil {
			return eris.Wrap(err, "run")
		}

		zap.L().Info("run complete",
			zap.String("run_id", res.RunID),
			zap.Int("episodes", res.Summary.TotalEpisodes),
			zap.String("output_dir", res.Summary.OutputDir),
		)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "processed %d episodes (%d skipped, %d failed); index lists %d artifacts in %s\n",
			res.Count(model.EpisodeStatusSuccess),
			res.Count(model.EpisodeStatusSkipped),
			res.Count(model.EpisodeStatusFailed),
			res.Index.Total,
			res.Summary.OutputDir,
		)
		return nil
	},
}

// applyRunFlags overlays explicitly set flags onto the loaded config.
func applyRunFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("dataset") {
		cfg.Dataset.Dir = runDataset
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Dir = runOutput
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Batch.Concurrency = runConcurrency
	}
}

func newPipeline(st store.Store) (*pipeline.Pipeline, error) {
	rules, err := pipeline.LoadTriageRules(cfg.Pipeline.TriageRulesPath)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, st, dataset.Open(cfg.Dataset.Dir), rules), nil
}

func init() {
	runCmd.Flags().StringVar(&runDataset, "dataset", "", "dataset root directory (overrides dataset.dir)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output directory (overrides output.dir)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "episodes processed in parallel (overrides batch.concurrency)")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record the run in the run-history store")
	rootCmd.AddCommand(runCmd)
}
