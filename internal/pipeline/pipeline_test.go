package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fcva-data/taxbook-cli/internal/books"
	"github.com/fcva-data/taxbook-cli/internal/ledger"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	args := m.Called(ctx, pdfPath)
	return args.String(0), args.Error(1)
}

const bookText2024 = `COUNTY OF FREDERICK                                   PAGE 1
70A - 3 - - 27     SHAWNEE DISTRICT    LOT 27 S2   CL 1   ACCT 123456   119,700   190,300   310,000   1,581.00
   SMITH JOHN
   123 APPLE LN
   WINCHESTER VA 22601
PAGE TOTALS        119,700   190,300   310,000   1,581.00
`

const bookText2025 = `RATE  .48
3A - 2 - - 8       OPEQUON DISTRICT    ACCT 333444
   GREEN VALLEY FARM LLC
   75,000    75,000    382.50
FINAL TOTALS       75,000
`

// newTestRegistry builds a registry whose book files live under dir. Only the
// years listed in present get a file on disk.
func newTestRegistry(t *testing.T, dir string, years, present []int) *books.Registry {
	t.Helper()
	list := make([]books.Book, 0, len(years))
	for _, y := range years {
		list = append(list, books.Book{
			Year:         y,
			File:         fmt.Sprintf("book_%d.pdf", y),
			TaxRate:      0.51,
			Commissioner: "Seth T. Thatcher",
		})
	}
	reg, err := books.NewRegistry(list)
	require.NoError(t, err)
	for _, y := range present {
		path := filepath.Join(dir, fmt.Sprintf("book_%d.pdf", y))
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	}
	return reg
}

func TestDriverRunTwoYears(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(t, dir, []int{2024, 2025}, []int{2024, 2025})

	ext := &mockExtractor{}
	ext.On("ExtractText", mock.Anything, filepath.Join(dir, "book_2024.pdf")).Return(bookText2024, nil)
	ext.On("ExtractText", mock.Anything, filepath.Join(dir, "book_2025.pdf")).Return(bookText2025, nil)

	d := NewDriver(reg, ledger.NewRuleSet(), ext, dir, 2)
	res, err := d.Run(context.Background(), []int{2025, 2024})
	require.NoError(t, err)

	// Years come back sorted regardless of request order.
	require.Len(t, res.Years, 2)
	assert.Equal(t, 2024, res.Years[0].Year)
	assert.Equal(t, 2025, res.Years[1].Year)
	assert.NoError(t, res.Years[0].Err)
	assert.NoError(t, res.Years[1].Err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "70A-3--27", res.Records[0].ParcelCode)
	assert.Equal(t, 2024, res.Records[0].Year)
	assert.Equal(t, "3A-2--8", res.Records[1].ParcelCode)
	assert.Equal(t, 2025, res.Records[1].Year)

	require.Len(t, res.Summaries, 2)
	assert.Equal(t, 2024, res.Summaries[0].Year)
	assert.Equal(t, 1, res.Summaries[0].TotalRecords)
	assert.Equal(t, int64(310_000), res.Summaries[0].Totals.TotalValue)
	assert.Equal(t, 2025, res.Summaries[1].Year)
	assert.Equal(t, int64(75_000), res.Summaries[1].Totals.LandValue)

	assert.Empty(t, res.Failed())
	ext.AssertExpectations(t)
}

func TestDriverMissingSourceIsolatesYear(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(t, dir, []int{2024, 2025}, []int{2024})

	ext := &mockExtractor{}
	ext.On("ExtractText", mock.Anything, filepath.Join(dir, "book_2024.pdf")).Return(bookText2024, nil)

	d := NewDriver(reg, ledger.NewRuleSet(), ext, dir, 2)
	res, err := d.Run(context.Background(), []int{2024, 2025})
	require.NoError(t, err)

	// 2024 parses normally.
	ok := res.Years[0]
	assert.NoError(t, ok.Err)
	assert.Len(t, ok.Records, 1)

	// 2025 is marked missing with an empty record list and a placeholder summary.
	miss := res.Years[1]
	assert.True(t, miss.SourceMissing)
	assert.True(t, eris.Is(miss.Err, ErrSourceMissing))
	assert.Empty(t, miss.Records)
	require.NotNil(t, miss.Summary)
	assert.Equal(t, 2025, miss.Summary.Year)
	assert.Zero(t, miss.Summary.TotalRecords)

	// The merged corpus still carries both summaries but only 2024 records.
	assert.Len(t, res.Records, 1)
	require.Len(t, res.Summaries, 2)
	assert.Equal(t, 2025, res.Summaries[1].Year)

	// The extractor never ran for the missing year.
	ext.AssertNumberOfCalls(t, "ExtractText", 1)
}

func TestDriverExtractionFailureIsolatesYear(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(t, dir, []int{2024, 2025}, []int{2024, 2025})

	ext := &mockExtractor{}
	ext.On("ExtractText", mock.Anything, filepath.Join(dir, "book_2024.pdf")).Return(bookText2024, nil)
	ext.On("ExtractText", mock.Anything, filepath.Join(dir, "book_2025.pdf")).Return("", eris.New("pdftext: boom"))

	d := NewDriver(reg, ledger.NewRuleSet(), ext, dir, 2)
	res, err := d.Run(context.Background(), nil)
	require.NoError(t, err)

	failed := res.Years[1]
	assert.True(t, eris.Is(failed.Err, ErrExtraction))
	assert.False(t, failed.SourceMissing)
	assert.Empty(t, failed.Records)
	require.NotNil(t, failed.Summary)
	assert.Zero(t, failed.Summary.TotalRecords)

	assert.NoError(t, res.Years[0].Err)
	assert.Len(t, res.Records, 1)

	require.Len(t, res.Failed(), 1)
	assert.Equal(t, 2025, res.Failed()[0].Year)
}

func TestDriverUnknownYear(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(t, dir, []int{2024}, []int{2024})

	d := NewDriver(reg, ledger.NewRuleSet(), &mockExtractor{}, dir, 1)
	res, err := d.Run(context.Background(), []int{1999})
	require.NoError(t, err)

	require.Len(t, res.Years, 1)
	assert.Error(t, res.Years[0].Err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Summaries)
}

func TestDriverDefaultsToAllRegisteredYears(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(t, dir, []int{2024, 2025}, []int{2024, 2025})

	ext := &mockExtractor{}
	ext.On("ExtractText", mock.Anything, mock.Anything).Return(bookText2024, nil)

	// Zero concurrency normalizes to the default bound.
	d := NewDriver(reg, ledger.NewRuleSet(), ext, dir, 0)
	res, err := d.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, res.Years, 2)
	ext.AssertNumberOfCalls(t, "ExtractText", 2)
}
