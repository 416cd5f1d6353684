package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fcva-data/taxbook-cli/internal/artifact"
	"github.com/fcva-data/taxbook-cli/internal/report"
)

var reportInput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the summary report from a corpus artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := reportInput
		if path == "" {
			path = filepath.Join(cfg.Parse.OutDir, artifact.CorpusFile)
		}

		corpus, err := artifact.ReadCorpus(path)
		if err != nil {
			return err
		}

		fmt.Print(report.FormatText(corpus.Summaries))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportInput, "input", "", "corpus artifact path (default <parse.out_dir>/"+artifact.CorpusFile+")")
	rootCmd.AddCommand(reportCmd)
}
