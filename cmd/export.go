package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/carenav/internal/export"
)

var (
	exportFormat string
	exportOut    string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Flatten episode artifacts into an xlsx workbook or parquet file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		dir := exportOutput
		if dir == "" {
			dir = cfg.Output.Dir
		}

		episodes, err := export.LoadArtifacts(dir)
		if err != nil {
			return err
		}

		n, err := export.Write(format, exportOut, episodes)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", n, exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "export format: xlsx or parquet")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "destination file")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output directory holding episode artifacts (overrides output.dir)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
