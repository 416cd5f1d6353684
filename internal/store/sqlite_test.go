package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcva-data/taxbook-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_WALMode(t *testing.T) {
	st := newTestSQLiteStore(t)

	var mode string
	err := st.db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

func TestSQLite_ListRuns_StartedAfter(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateRun(ctx, []int{2024})
	require.NoError(t, err)

	recent, err := st.ListRuns(ctx, RunFilter{StartedAfter: time.Now().UTC().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	future, err := st.ListRuns(ctx, RunFilter{StartedAfter: time.Now().UTC().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)
}

func TestSQLite_ReplaceYearRecords_EmptyClearsYear(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.ReplaceYearRecords(ctx, 2022, []model.PropertyRecord{
		{Year: 2022, ParcelCode: "10-A-5", LandValue: 50000, TotalValue: 50000},
	})
	require.NoError(t, err)

	n, err := st.ReplaceYearRecords(ctx, 2022, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	recs, err := st.ListRecords(ctx, RecordFilter{Year: 2022})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLite_RunNotFoundIncludesID(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteRun(context.Background(), "run-xyz", &model.ParseRunResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-xyz")
}
