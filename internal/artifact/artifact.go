// Package artifact assembles and persists the corpus JSON artifacts.
package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/fcva-data/taxbook-cli/internal/model"
)

// Output file names, fixed for downstream consumers.
const (
	CorpusFile  = "real_estate_tax.json"
	SummaryFile = "real_estate_tax_summary.json"
)

const (
	sourceName  = "Frederick County Commissioner of Revenue"
	sourceURL   = "https://www.fcva.us/departments/commissioner-of-the-revenue"
	description = "Real Estate Tax Assessment Data"
)

// Metadata describes the provenance and coverage of a corpus.
type Metadata struct {
	Source          string         `json:"source"`
	SourceURL       string         `json:"source_url"`
	Description     string         `json:"description"`
	Years           []int          `json:"years"`
	Districts       []string       `json:"districts"`
	PropertyClasses map[int]string `json:"property_classes"`
	ProcessedDate   string         `json:"processed_date"`
	TotalRecords    int            `json:"total_records"`
}

// Corpus is the full output artifact: provenance metadata, one summary per
// year, and every extracted property record across all years.
type Corpus struct {
	Metadata  Metadata               `json:"metadata"`
	Summaries []*model.YearSummary   `json:"annual_summaries"`
	Records   []model.PropertyRecord `json:"records"`
}

// summaryOnly is the trimmed shape written to the summary artifact.
type summaryOnly struct {
	Metadata  Metadata             `json:"metadata"`
	Summaries []*model.YearSummary `json:"annual_summaries"`
}

// New assembles a corpus from per-year pipeline output. Summaries and
// records are expected already ordered by year.
func New(years []int, summaries []*model.YearSummary, records []model.PropertyRecord) *Corpus {
	return &Corpus{
		Metadata: Metadata{
			Source:          sourceName,
			SourceURL:       sourceURL,
			Description:     description,
			Years:           years,
			Districts:       model.Districts,
			PropertyClasses: model.PropertyClasses,
			ProcessedDate:   time.Now().UTC().Format(time.RFC3339),
			TotalRecords:    len(records),
		},
		Summaries: summaries,
		Records:   records,
	}
}

// WriteCorpus writes the full artifact under dir and returns its path.
func WriteCorpus(c *Corpus, dir string) (string, error) {
	path := filepath.Join(dir, CorpusFile)
	if err := writeJSON(path, c); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSummary writes the summary-only artifact under dir and returns its
// path. It carries the same metadata as the corpus but drops the records.
func WriteSummary(c *Corpus, dir string) (string, error) {
	path := filepath.Join(dir, SummaryFile)
	if err := writeJSON(path, summaryOnly{Metadata: c.Metadata, Summaries: c.Summaries}); err != nil {
		return "", err
	}
	return path, nil
}

// ReadCorpus loads a previously written corpus artifact.
func ReadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: read %s", path)
	}
	var c Corpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrapf(err, "artifact: decode %s", path)
	}
	return &c, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "artifact: create output dir %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "artifact: create %s", path)
	}
	defer f.Close() //nolint:errcheck
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrapf(err, "artifact: encode %s", path)
	}
	return nil
}
