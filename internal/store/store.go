package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/fcva-data/taxbook-cli/internal/model"
)

// RunFilter specifies criteria for listing parse runs.
type RunFilter struct {
	Status       model.ParseRunStatus `json:"status,omitempty"`
	StartedAfter time.Time            `json:"started_after,omitempty"`
	Limit        int                  `json:"limit,omitempty"`
	Offset       int                  `json:"offset,omitempty"`
}

// RecordFilter specifies criteria for querying property records.
// Class is a pointer because class 0 (unclassified) is a real filter value.
type RecordFilter struct {
	Year     int    `json:"year,omitempty"`
	District string `json:"district,omitempty"`
	Class    *int   `json:"class,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for parsed tax book data.
type Store interface {
	// Parse runs
	CreateRun(ctx context.Context, years []int) (*model.ParseRun, error)
	CompleteRun(ctx context.Context, runID string, result *model.ParseRunResult) error
	FailRun(ctx context.Context, runID string, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.ParseRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ParseRun, error)

	// Property records
	ReplaceYearRecords(ctx context.Context, year int, records []model.PropertyRecord) (int64, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.PropertyRecord, error)

	// Year summaries
	SaveSummaries(ctx context.Context, summaries []*model.YearSummary) error
	ListSummaries(ctx context.Context) ([]*model.YearSummary, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// recordColumns is the property_records column order shared by both backends
// for inserts and scans.
var recordColumns = []string{
	"year", "parcel_code", "owner_name", "owner_address", "owner_city_state_zip",
	"description", "land_value", "improvement_value", "total_value", "tax_amount",
	"acreage", "property_class", "zone", "account_number", "district",
	"first_half_tax", "second_half_tax", "deferred_value", "owner_confidence",
}

// recordRow converts a PropertyRecord into a row in recordColumns order.
// A missing owner confidence block becomes a SQL NULL.
func recordRow(r model.PropertyRecord) ([]any, error) {
	var ocJSON any
	if r.OwnerConfidence != nil {
		b, err := json.Marshal(r.OwnerConfidence)
		if err != nil {
			return nil, eris.Wrapf(err, "store: marshal owner confidence for %s", r.ParcelCode)
		}
		ocJSON = string(b)
	}
	return []any{
		r.Year, r.ParcelCode, r.OwnerName, r.OwnerAddress, r.OwnerCityStateZip,
		r.Description, r.LandValue, r.ImprovementValue, r.TotalValue, r.TaxAmount,
		r.Acreage, r.PropertyClass, r.Zone, r.AccountNumber, r.District,
		r.FirstHalfTax, r.SecondHalfTax, r.DeferredValue, ocJSON,
	}, nil
}
