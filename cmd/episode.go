package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/carenav/internal/dataset"
	"github.com/sells-group/carenav/internal/model"
	"github.com/sells-group/carenav/internal/pipeline"
)

var episodeCmd = &cobra.Command{
	Use:   "episode <episode-id>",
	Short: "Process a single episode and print its artifact",
	Long:  "Processes one episode, writes its artifact under the output directory, refreshes episodes/index.json, and prints the artifact. summary.json is only written by run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyRunFlags(cmd)
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		p, err := newPipeline(nil)
		if err != nil {
			return err
		}

		o, err := p.RunOne(ctx, args[0])
		if err != nil {
			return err
		}
		if o.Status == model.EpisodeStatusSkipped {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "episode %s skipped: %s\n", args[0], o.Reason)
			return nil
		}

		if _, err := pipeline.RefreshIndex(p.OutputDir()); err != nil {
			return err
		}

		data, err := dataset.MarshalJSON(o.Output)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	episodeCmd.Flags().StringVar(&runDataset, "dataset", "", "dataset root directory (overrides dataset.dir)")
	episodeCmd.Flags().StringVar(&runOutput, "output", "", "output directory (overrides output.dir)")
	rootCmd.AddCommand(episodeCmd)
}
