package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fcva-data/taxbook-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS parse_runs (
	id           TEXT PRIMARY KEY,
	years        TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	result       TEXT,
	error        TEXT,
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS property_records (
	year                 INTEGER NOT NULL,
	parcel_code          TEXT NOT NULL,
	owner_name           TEXT NOT NULL DEFAULT '',
	owner_address        TEXT NOT NULL DEFAULT '',
	owner_city_state_zip TEXT NOT NULL DEFAULT '',
	description          TEXT NOT NULL DEFAULT '',
	land_value           INTEGER NOT NULL DEFAULT 0,
	improvement_value    INTEGER NOT NULL DEFAULT 0,
	total_value          INTEGER NOT NULL DEFAULT 0,
	tax_amount           REAL NOT NULL DEFAULT 0,
	acreage              REAL NOT NULL DEFAULT 0,
	property_class       INTEGER NOT NULL DEFAULT 0,
	zone                 TEXT NOT NULL DEFAULT '',
	account_number       TEXT NOT NULL DEFAULT '',
	district             TEXT NOT NULL DEFAULT '',
	first_half_tax       REAL NOT NULL DEFAULT 0,
	second_half_tax      REAL NOT NULL DEFAULT 0,
	deferred_value       INTEGER NOT NULL DEFAULT 0,
	owner_confidence     TEXT
);

CREATE TABLE IF NOT EXISTS year_summaries (
	year       INTEGER PRIMARY KEY,
	summary    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_parse_runs_status ON parse_runs(status);
CREATE INDEX IF NOT EXISTS idx_parse_runs_started_at ON parse_runs(started_at);
CREATE INDEX IF NOT EXISTS idx_property_records_year ON property_records(year);
CREATE INDEX IF NOT EXISTS idx_property_records_district ON property_records(district);
CREATE INDEX IF NOT EXISTS idx_property_records_class ON property_records(property_class);
CREATE INDEX IF NOT EXISTS idx_property_records_year_parcel ON property_records(year, parcel_code);
`

const sqliteInsertRecord = `INSERT INTO property_records
	(year, parcel_code, owner_name, owner_address, owner_city_state_zip,
	 description, land_value, improvement_value, total_value, tax_amount,
	 acreage, property_class, zone, account_number, district,
	 first_half_tax, second_half_tax, deferred_value, owner_confidence)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, years []int) (*model.ParseRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	yearsJSON, err := json.Marshal(years)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal years")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO parse_runs (id, years, status, started_at) VALUES (?, ?, ?, ?)`,
		id, string(yearsJSON), string(model.ParseRunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.ParseRun{
		ID:        id,
		Years:     years,
		Status:    model.ParseRunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result *model.ParseRunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE parse_runs SET status = ?, result = ?, completed_at = ? WHERE id = ?`,
		string(model.ParseRunStatusComplete), string(resultJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE parse_runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(model.ParseRunStatusFailed), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.ParseRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, years, status, result, error, started_at, completed_at FROM parse_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ParseRun, error) {
	query := `SELECT id, years, status, result, error, started_at, completed_at FROM parse_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if !filter.StartedAfter.IsZero() {
		query += ` AND started_at > ?`
		args = append(args, filter.StartedAfter.UTC())
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ParseRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// ReplaceYearRecords swaps out all stored records for a year in one
// transaction, so readers never observe a half-loaded year.
func (s *SQLiteStore) ReplaceYearRecords(ctx context.Context, year int, records []model.PropertyRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin replace records")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM property_records WHERE year = ?`, year); err != nil {
		return 0, eris.Wrapf(err, "sqlite: delete records for year %d", year)
	}

	stmt, err := tx.PrepareContext(ctx, sqliteInsertRecord)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare record insert")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for i := range records {
		row, err := recordRow(records[i])
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert record %s", records[i].ParcelCode)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrapf(err, "sqlite: commit records for year %d", year)
	}
	return n, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.PropertyRecord, error) {
	query := `SELECT year, parcel_code, owner_name, owner_address, owner_city_state_zip,
	       description, land_value, improvement_value, total_value, tax_amount,
	       acreage, property_class, zone, account_number, district,
	       first_half_tax, second_half_tax, deferred_value, owner_confidence
	  FROM property_records WHERE 1=1`
	var args []any

	if filter.Year != 0 {
		query += ` AND year = ?`
		args = append(args, filter.Year)
	}
	if filter.District != "" {
		query += ` AND district = ?`
		args = append(args, filter.District)
	}
	if filter.Class != nil {
		query += ` AND property_class = ?`
		args = append(args, *filter.Class)
	}
	query += ` ORDER BY year, parcel_code`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []model.PropertyRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

func (s *SQLiteStore) SaveSummaries(ctx context.Context, summaries []*model.YearSummary) error {
	for _, sum := range summaries {
		summaryJSON, err := json.Marshal(sum)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal summary %d", sum.Year)
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO year_summaries (year, summary, updated_at) VALUES (?, ?, ?)`,
			sum.Year, string(summaryJSON), time.Now().UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: save summary %d", sum.Year)
		}
	}
	return nil
}

func (s *SQLiteStore) ListSummaries(ctx context.Context) ([]*model.YearSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT summary FROM year_summaries ORDER BY year`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list summaries")
	}
	defer rows.Close()

	var summaries []*model.YearSummary
	for rows.Next() {
		var summaryJSON string
		if err := rows.Scan(&summaryJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan summary")
		}
		sum := &model.YearSummary{}
		if err := json.Unmarshal([]byte(summaryJSON), sum); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal summary")
		}
		summaries = append(summaries, sum)
	}
	return summaries, eris.Wrap(rows.Err(), "sqlite: list summaries iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.ParseRun, error) {
	var r model.ParseRun
	var yearsJSON string
	var resultJSON, errMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(&r.ID, &yearsJSON, &r.Status, &resultJSON, &errMsg, &r.StartedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(yearsJSON), &r.Years); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal years")
	}
	if resultJSON.Valid {
		r.Result = &model.ParseRunResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	if completedAt.Valid {
		done := completedAt.Time
		r.CompletedAt = &done
	}
	return &r, nil
}

func scanRecord(row scannable) (*model.PropertyRecord, error) {
	var r model.PropertyRecord
	var ocJSON sql.NullString

	err := row.Scan(
		&r.Year, &r.ParcelCode, &r.OwnerName, &r.OwnerAddress, &r.OwnerCityStateZip,
		&r.Description, &r.LandValue, &r.ImprovementValue, &r.TotalValue, &r.TaxAmount,
		&r.Acreage, &r.PropertyClass, &r.Zone, &r.AccountNumber, &r.District,
		&r.FirstHalfTax, &r.SecondHalfTax, &r.DeferredValue, &ocJSON,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan record")
	}

	if ocJSON.Valid && ocJSON.String != "" {
		r.OwnerConfidence = &model.OwnerConfidence{}
		if err := json.Unmarshal([]byte(ocJSON.String), r.OwnerConfidence); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal owner confidence")
		}
	}
	return &r, nil
}
