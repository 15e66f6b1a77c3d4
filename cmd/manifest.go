package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/carenav/internal/dataset"
)

var manifestDataset string

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Write manifest.json listing every file in the dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		root := manifestDataset
		if root == "" {
			root = cfg.Dataset.Dir
		}

		m, err := dataset.WriteManifest(root, time.Now())
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "manifest lists %d files in %d categories\n", m.TotalFiles, len(m.Categories))
		return nil
	},
}

func init() {
	manifestCmd.Flags().StringVar(&manifestDataset, "dataset", "", "dataset root directory (overrides dataset.dir)")
	rootCmd.AddCommand(manifestCmd)
}
