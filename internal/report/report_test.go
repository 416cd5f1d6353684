package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcva-data/taxbook-cli/internal/model"
)

// testSummaries returns two years deliberately out of order to exercise
// sorting.
func testSummaries() []*model.YearSummary {
	return []*model.YearSummary{
		{
			Year:         2025,
			TaxRate:      0.51,
			TotalRecords: 47123,
			Totals: model.ValuationTotals{
				LandValue:        2000000000,
				ImprovementValue: 8500000000,
				TotalValue:       10500000000,
				TaxAmount:        53550000.00,
				DeferredValue:    310000000,
			},
			ByDistrict: map[string]*model.DistrictSummary{
				"Shawnee": {
					PropertyCount:    12045,
					LandValue:        900000000,
					ImprovementValue: 2300000000,
					TotalValue:       3200000000,
					TaxAmount:        16320000.00,
					TotalAcreage:     41000.25,
					PctOfCountyValue: 30.5,
					AvgPropertyValue: 265670,
				},
				"Back Creek": {
					PropertyCount:    9876,
					TotalValue:       2100000000,
					TaxAmount:        10710000.00,
					PctOfCountyValue: 20.0,
				},
			},
			ByClass: map[int]*model.ClassSummary{
				1: {Count: 31500, TotalValue: 7400000000, Tax: 37740000.00, ClassName: "Residential", PctOfTotal: 70.5},
				2: {Count: 5200, TotalValue: 1300000000, Tax: 6630000.00, ClassName: "Agricultural/Undeveloped", PctOfTotal: 12.4},
			},
		},
		{
			Year:         2021,
			TaxRate:      0.61,
			TotalRecords: 45123,
			Totals: model.ValuationTotals{
				LandValue:        1800000000,
				ImprovementValue: 7200000000,
				TotalValue:       9000000000,
				TaxAmount:        54900000.00,
				DeferredValue:    280000000,
			},
			ByDistrict: map[string]*model.DistrictSummary{
				"Opequon": {
					PropertyCount:    8000,
					TotalValue:       1500000000,
					TaxAmount:        9150000.00,
					TotalAcreage:     30500.5,
					PctOfCountyValue: 16.7,
					AvgPropertyValue: 187500,
				},
			},
			ByClass: map[int]*model.ClassSummary{
				1: {Count: 30000, TotalValue: 6800000000, Tax: 41480000.00, ClassName: "Residential", PctOfTotal: 75.6},
			},
		},
	}
}

func TestFormatText(t *testing.T) {
	out := FormatText(testSummaries())

	assert.Contains(t, out, strings.Repeat("=", 60))
	assert.Contains(t, out, "SUMMARY BY YEAR")

	// Years appear in ascending order regardless of input order.
	assert.Contains(t, out, "2021 (Rate: $0.61/$100)")
	assert.Contains(t, out, "2025 (Rate: $0.51/$100)")
	assert.Less(t, strings.Index(out, "2021 (Rate"), strings.Index(out, "2025 (Rate"))

	// Right-aligned, comma-grouped totals.
	assert.Contains(t, out, "  Records:            47,123")
	assert.Contains(t, out, "  Total Value:  $ 10,500,000,000")
	assert.Contains(t, out, "  Tax Revenue:  $  53,550,000.00")

	// District breakdown covers only the latest year, districts sorted by name.
	assert.Contains(t, out, "2025 BY DISTRICT")
	assert.NotContains(t, out, "2021 BY DISTRICT")
	assert.NotContains(t, out, "Opequon:")
	assert.Less(t, strings.Index(out, "Back Creek:"), strings.Index(out, "Shawnee:"))

	assert.Contains(t, out, "  Properties:        9,876")
	assert.Contains(t, out, "  Total Value:  $ 2,100,000,000")
	assert.Contains(t, out, "  Tax Revenue:  $ 10,710,000.00")
	assert.Contains(t, out, "  % of County:        20.0%")
	assert.Contains(t, out, "  % of County:        30.5%")
}

func TestFormatText_Empty(t *testing.T) {
	out := FormatText(nil)

	assert.Contains(t, out, "SUMMARY BY YEAR")
	assert.NotContains(t, out, "BY DISTRICT")
}

func TestFormatText_NoDistricts(t *testing.T) {
	out := FormatText([]*model.YearSummary{{Year: 2023, TaxRate: 0.51, TotalRecords: 10}})

	assert.Contains(t, out, "2023 BY DISTRICT")
	assert.NotContains(t, out, "Properties:")
}

func TestSortedByYear_DoesNotMutateInput(t *testing.T) {
	in := testSummaries()
	require.Equal(t, 2025, in[0].Year)

	_ = sortedByYear(in)
	assert.Equal(t, 2025, in[0].Year)
}
