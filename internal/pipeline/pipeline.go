// Package pipeline drives extraction, parsing, and aggregation across tax years.
package pipeline

import (
	"context"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fcva-data/taxbook-cli/internal/aggregate"
	"github.com/fcva-data/taxbook-cli/internal/books"
	"github.com/fcva-data/taxbook-cli/internal/ledger"
	"github.com/fcva-data/taxbook-cli/internal/model"
	"github.com/fcva-data/taxbook-cli/internal/pdftext"
)

// DefaultConcurrency bounds the year worker pool when no override is configured.
const DefaultConcurrency = 5

var (
	// ErrSourceMissing marks a year whose book PDF is absent from the data directory.
	ErrSourceMissing = eris.New("pipeline: source file missing")
	// ErrExtraction marks a year whose PDF exists but text extraction failed.
	ErrExtraction = eris.New("pipeline: text extraction failed")
)

// YearResult is the complete outcome for one tax year. A failed year still
// carries an empty record list and a placeholder summary so the merged
// output stays year-complete.
type YearResult struct {
	Year          int
	Book          books.Book
	Records       []model.PropertyRecord
	Summary       *model.YearSummary
	SourceMissing bool
	Err           error
	Duration      time.Duration
}

// Result merges every year of a run, ordered by year.
type Result struct {
	Years     []YearResult
	Records   []model.PropertyRecord
	Summaries []*model.YearSummary
}

// Failed returns the per-year results that ended in an error.
func (r *Result) Failed() []YearResult {
	var out []YearResult
	for _, yr := range r.Years {
		if yr.Err != nil {
			out = append(out, yr)
		}
	}
	return out
}

// Driver runs the extract-parse-aggregate pipeline for a set of years with a
// bounded worker pool. One failing year never cancels its siblings.
type Driver struct {
	registry    *books.Registry
	rules       *ledger.RuleSet
	extractor   pdftext.Extractor
	pdfDir      string
	concurrency int
}

// NewDriver creates a Driver. Concurrency below 1 falls back to the default.
func NewDriver(reg *books.Registry, rules *ledger.RuleSet, ext pdftext.Extractor, pdfDir string, concurrency int) *Driver {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Driver{
		registry:    reg,
		rules:       rules,
		extractor:   ext,
		pdfDir:      pdfDir,
		concurrency: concurrency,
	}
}

// Run processes the given years. An empty slice means every registered year.
// The returned result orders years, records, and summaries by year.
func (d *Driver) Run(ctx context.Context, years []int) (*Result, error) {
	if len(years) == 0 {
		years = d.registry.Years()
	}
	sorted := append([]int(nil), years...)
	sort.Ints(sorted)

	zap.L().Info("pipeline starting",
		zap.Ints("years", sorted),
		zap.Int("concurrency", d.concurrency),
	)

	results := make([]YearResult, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	var succeeded, failed atomic.Int64

	for i, year := range sorted {
		g.Go(func() error {
			log := zap.L().With(zap.Int("year", year))

			res := d.runYear(gctx, year)
			if res.Err != nil {
				failed.Add(1)
				log.Error("year failed", zap.Error(res.Err))
			} else {
				succeeded.Add(1)
				log.Info("year complete",
					zap.Int("records", len(res.Records)),
					zap.Duration("duration", res.Duration),
				)
			}
			results[i] = res
			return nil // don't abort the run on individual year failure
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run years")
	}

	out := &Result{Years: results}
	for _, res := range results {
		out.Records = append(out.Records, res.Records...)
		if res.Summary != nil {
			out.Summaries = append(out.Summaries, res.Summary)
		}
	}

	zap.L().Info("pipeline complete",
		zap.Int64("years_succeeded", succeeded.Load()),
		zap.Int64("years_failed", failed.Load()),
		zap.Int("records", len(out.Records)),
	)
	return out, nil
}

// runYear processes a single year end to end. Failures are captured in the
// result, never returned, so the caller's pool keeps draining.
func (d *Driver) runYear(ctx context.Context, year int) (res YearResult) {
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	res.Year = year
	res.Records = []model.PropertyRecord{}

	book, err := d.registry.Get(year)
	if err != nil {
		res.Err = err
		return res
	}
	res.Book = book
	res.Summary = aggregate.Summarize(nil, book)

	pdfPath := book.Path(d.pdfDir)
	if _, err := os.Stat(pdfPath); err != nil {
		res.SourceMissing = true
		res.Err = eris.Wrapf(ErrSourceMissing, "year %d: %s", year, pdfPath)
		return res
	}

	text, err := d.extractor.ExtractText(ctx, pdfPath)
	if err != nil {
		res.Err = eris.Wrapf(ErrExtraction, "year %d: %v", year, err)
		return res
	}

	rules, err := d.rules.ForYear(year)
	if err != nil {
		res.Err = err
		return res
	}

	res.Records = ledger.NewParser(rules, year).Parse(text)
	res.Summary = aggregate.Summarize(res.Records, book)
	return res
}
