package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fcva-data/taxbook-cli/internal/artifact"
	"github.com/fcva-data/taxbook-cli/internal/books"
	"github.com/fcva-data/taxbook-cli/internal/ledger"
	"github.com/fcva-data/taxbook-cli/internal/model"
	"github.com/fcva-data/taxbook-cli/internal/pdftext"
	"github.com/fcva-data/taxbook-cli/internal/pipeline"
	"github.com/fcva-data/taxbook-cli/internal/report"
	"github.com/fcva-data/taxbook-cli/internal/store"
)

var (
	parseYears       []int
	parseSave        bool
	parseConcurrency int
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse tax book PDFs into the corpus artifacts",
	Long:  "Extracts text from the annual tax book PDFs, parses assessment records, aggregates per-year summaries, and writes the corpus and summary artifacts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("parse"); err != nil {
			return err
		}
		if parseSave {
			if err := cfg.Validate("store"); err != nil {
				return err
			}
		}

		driver, err := buildDriver()
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := driver.Run(ctx, parseYears)
		if err != nil {
			return err
		}

		for _, yr := range result.Failed() {
			zap.L().Warn("year not parsed", zap.Int("year", yr.Year), zap.Error(yr.Err))
		}

		corpus := artifact.New(resultYears(result), result.Summaries, result.Records)
		corpusPath, err := artifact.WriteCorpus(corpus, cfg.Parse.OutDir)
		if err != nil {
			return err
		}
		summaryPath, err := artifact.WriteSummary(corpus, cfg.Parse.OutDir)
		if err != nil {
			return err
		}

		fmt.Print(report.FormatText(result.Summaries))
		fmt.Println("\nOutput written to:")
		fmt.Printf("  - %s (%.1f MB)\n", corpusPath, float64(fileSize(corpusPath))/1024/1024)
		fmt.Printf("  - %s (%.1f KB)\n", summaryPath, float64(fileSize(summaryPath))/1024)

		if parseSave {
			return persistRun(ctx, result, time.Since(start))
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().IntSliceVar(&parseYears, "years", nil, "tax years to parse (default: all registered books)")
	parseCmd.Flags().BoolVar(&parseSave, "save", false, "persist records and summaries to the store")
	parseCmd.Flags().IntVar(&parseConcurrency, "concurrency", 0, "max years parsed in parallel (default from config)")
	rootCmd.AddCommand(parseCmd)
}

// buildDriver assembles the parse pipeline from config: book registry,
// parse rules, and the PDF text extractor.
func buildDriver() (*pipeline.Driver, error) {
	registry := books.Builtin()
	if cfg.Parse.BooksFile != "" {
		var err error
		registry, err = books.LoadFile(cfg.Parse.BooksFile)
		if err != nil {
			return nil, err
		}
	}

	rules := ledger.NewRuleSet()
	if cfg.Parse.RulesFile != "" {
		var err error
		rules, err = ledger.LoadRuleSet(cfg.Parse.RulesFile)
		if err != nil {
			return nil, err
		}
	}

	extractor, err := pdftext.NewExtractor(cfg.Extract)
	if err != nil {
		return nil, err
	}

	concurrency := parseConcurrency
	if concurrency == 0 {
		concurrency = cfg.Parse.Concurrency
	}

	return pipeline.NewDriver(registry, rules, extractor, cfg.Parse.PDFDir, concurrency), nil
}

// persistRun stores the parse output and records the run in the parse log.
// Year-level failures are recorded on the run; only store errors fail it.
func persistRun(ctx context.Context, result *pipeline.Result, elapsed time.Duration) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "migrate store")
	}

	run, err := st.CreateRun(ctx, resultYears(result))
	if err != nil {
		return eris.Wrap(err, "create run")
	}

	runResult := &model.ParseRunResult{
		TotalRecords: len(result.Records),
		ByYear:       map[int]int{},
		FailedYears:  map[int]string{},
		DurationMS:   elapsed.Milliseconds(),
	}

	var summaries []*model.YearSummary
	for _, yr := range result.Years {
		if yr.Err != nil {
			// Failed years keep their previously stored records and summary.
			runResult.FailedYears[yr.Year] = yr.Err.Error()
			continue
		}
		if _, err := st.ReplaceYearRecords(ctx, yr.Year, yr.Records); err != nil {
			failRun(ctx, st, run.ID, err)
			return eris.Wrapf(err, "store records for year %d", yr.Year)
		}
		runResult.ByYear[yr.Year] = len(yr.Records)
		if yr.Summary != nil {
			summaries = append(summaries, yr.Summary)
		}
	}

	if err := st.SaveSummaries(ctx, summaries); err != nil {
		failRun(ctx, st, run.ID, err)
		return eris.Wrap(err, "save summaries")
	}

	if err := st.CompleteRun(ctx, run.ID, runResult); err != nil {
		return eris.Wrap(err, "complete run")
	}

	zap.L().Info("run persisted",
		zap.String("run_id", run.ID),
		zap.Int("records", runResult.TotalRecords),
		zap.Int("failed_years", len(runResult.FailedYears)),
	)
	return nil
}

func failRun(ctx context.Context, st store.Store, runID string, cause error) {
	if err := st.FailRun(ctx, runID, cause.Error()); err != nil {
		zap.L().Error("fail run", zap.String("run_id", runID), zap.Error(err))
	}
}

// resultYears lists the years a pipeline result covers, in order.
func resultYears(result *pipeline.Result) []int {
	years := make([]int, 0, len(result.Years))
	for _, yr := range result.Years {
		years = append(years, yr.Year)
	}
	return years
}

// fileSize returns the size of path in bytes, or 0 if it cannot be read.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
