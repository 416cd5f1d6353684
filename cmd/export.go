package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fcva-data/taxbook-cli/internal/artifact"
	"github.com/fcva-data/taxbook-cli/internal/report"
)

var (
	exportInput string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the summary workbook (.xlsx) from a corpus artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := exportInput
		if in == "" {
			in = filepath.Join(cfg.Parse.OutDir, artifact.CorpusFile)
		}
		out := exportOut
		if out == "" {
			out = filepath.Join(cfg.Parse.OutDir, "real_estate_tax_summary.xlsx")
		}

		corpus, err := artifact.ReadCorpus(in)
		if err != nil {
			return err
		}

		if err := report.WriteWorkbook(out, corpus.Summaries); err != nil {
			return err
		}

		zap.L().Info("workbook written",
			zap.String("path", out),
			zap.Int("years", len(corpus.Summaries)),
		)
		fmt.Printf("Workbook written to %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "corpus artifact path (default <parse.out_dir>/"+artifact.CorpusFile+")")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "workbook output path (default <parse.out_dir>/real_estate_tax_summary.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
