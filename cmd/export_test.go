package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/fcva-data/taxbook-cli/internal/artifact"
	"github.com/fcva-data/taxbook-cli/internal/model"
)

// writeTestCorpus writes a two-year corpus artifact into dir and returns its path.
func writeTestCorpus(t *testing.T, dir string) string {
	t.Helper()

	summaries := []*model.YearSummary{
		{Year: 2024, TaxRate: 0.51, TotalRecords: 2, Totals: model.ValuationTotals{TotalValue: 650000, TaxAmount: 3315}},
		{Year: 2025, TaxRate: 0.48, TotalRecords: 1, Totals: model.ValuationTotals{TotalValue: 260000, TaxAmount: 1248}},
	}
	records := []model.PropertyRecord{
		{Year: 2024, ParcelCode: "45-A-1", TotalValue: 250000},
		{Year: 2024, ParcelCode: "62-A-9", TotalValue: 400000},
		{Year: 2025, ParcelCode: "45-A-1", TotalValue: 260000},
	}

	path, err := artifact.WriteCorpus(artifact.New([]int{2024, 2025}, summaries, records), dir)
	require.NoError(t, err)
	return path
}

func TestExportCmd_WritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	in := writeTestCorpus(t, dir)
	out := filepath.Join(dir, "summary.xlsx")

	restoreIn, restoreOut := exportInput, exportOut
	defer func() { exportInput, exportOut = restoreIn, restoreOut }()
	exportInput, exportOut = in, out

	require.NoError(t, exportCmd.RunE(exportCmd, nil))

	f, err := xlsx.OpenFile(out)
	require.NoError(t, err)
	assert.Contains(t, f.Sheet, "Totals")
	assert.Contains(t, f.Sheet, "Districts")
	assert.Contains(t, f.Sheet, "Classes")

	totals := f.Sheet["Totals"]
	require.Len(t, totals.Rows, 3)
	year, err := totals.Rows[1].Cells[0].Int()
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
}

func TestExportCmd_MissingArtifact(t *testing.T) {
	restoreIn, restoreOut := exportInput, exportOut
	defer func() { exportInput, exportOut = restoreIn, restoreOut }()
	exportInput = filepath.Join(t.TempDir(), "missing.json")
	exportOut = filepath.Join(t.TempDir(), "summary.xlsx")

	err := exportCmd.RunE(exportCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}

func TestExportCmd_Flags(t *testing.T) {
	for _, flag := range []string{"input", "out"} {
		f := exportCmd.Flags().Lookup(flag)
		require.NotNil(t, f, "flag %s should exist", flag)
		assert.Empty(t, f.DefValue)
	}
}

func TestReportCmd_MissingArtifact(t *testing.T) {
	restore := reportInput
	defer func() { reportInput = restore }()
	reportInput = filepath.Join(t.TempDir(), "missing.json")

	err := reportCmd.RunE(reportCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}

func TestReportCmd_Metadata(t *testing.T) {
	assert.Equal(t, "report", reportCmd.Use)
	require.NotNil(t, reportCmd.Flags().Lookup("input"))
}
