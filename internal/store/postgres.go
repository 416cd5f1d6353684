package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fcva-data/taxbook-cli/internal/db"
	"github.com/fcva-data/taxbook-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":          `INSERT INTO parse_runs (id, years, status, started_at) VALUES ($1, $2, $3, $4)`,
	"complete_run":        `UPDATE parse_runs SET status = $1, result = $2, completed_at = $3 WHERE id = $4`,
	"fail_run":            `UPDATE parse_runs SET status = $1, error = $2, completed_at = $3 WHERE id = $4`,
	"get_run":             `SELECT id, years, status, result, error, started_at, completed_at FROM parse_runs WHERE id = $1`,
	"delete_year_records": `DELETE FROM property_records WHERE year = $1`,
	"list_summaries":      `SELECT summary FROM year_summaries ORDER BY year`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS parse_runs (
	id           TEXT PRIMARY KEY,
	years        JSONB NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	result       JSONB,
	error        TEXT,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS property_records (
	year                 INTEGER NOT NULL,
	parcel_code          TEXT NOT NULL,
	owner_name           TEXT NOT NULL DEFAULT '',
	owner_address        TEXT NOT NULL DEFAULT '',
	owner_city_state_zip TEXT NOT NULL DEFAULT '',
	description          TEXT NOT NULL DEFAULT '',
	land_value           BIGINT NOT NULL DEFAULT 0,
	improvement_value    BIGINT NOT NULL DEFAULT 0,
	total_value          BIGINT NOT NULL DEFAULT 0,
	tax_amount           DOUBLE PRECISION NOT NULL DEFAULT 0,
	acreage              DOUBLE PRECISION NOT NULL DEFAULT 0,
	property_class       INTEGER NOT NULL DEFAULT 0,
	zone                 TEXT NOT NULL DEFAULT '',
	account_number       TEXT NOT NULL DEFAULT '',
	district             TEXT NOT NULL DEFAULT '',
	first_half_tax       DOUBLE PRECISION NOT NULL DEFAULT 0,
	second_half_tax      DOUBLE PRECISION NOT NULL DEFAULT 0,
	deferred_value       BIGINT NOT NULL DEFAULT 0,
	owner_confidence     JSONB
);

CREATE TABLE IF NOT EXISTS year_summaries (
	year       INTEGER PRIMARY KEY,
	summary    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_parse_runs_status ON parse_runs(status);
CREATE INDEX IF NOT EXISTS idx_parse_runs_started_at ON parse_runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_property_records_year ON property_records(year);
CREATE INDEX IF NOT EXISTS idx_property_records_district ON property_records(district);
CREATE INDEX IF NOT EXISTS idx_property_records_class ON property_records(property_class);
CREATE INDEX IF NOT EXISTS idx_property_records_year_parcel ON property_records(year, parcel_code);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, years []int) (*model.ParseRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	yearsJSON, err := json.Marshal(years)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal years")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO parse_runs (id, years, status, started_at) VALUES ($1, $2, $3, $4)`,
		id, yearsJSON, string(model.ParseRunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.ParseRun{
		ID:        id,
		Years:     years,
		Status:    model.ParseRunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.ParseRunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE parse_runs SET status = $1, result = $2, completed_at = $3 WHERE id = $4`,
		string(model.ParseRunStatusComplete), resultJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE parse_runs SET status = $1, error = $2, completed_at = $3 WHERE id = $4`,
		string(model.ParseRunStatusFailed), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.ParseRun, error) {
	var r model.ParseRun
	var yearsJSON []byte
	var resultNull *[]byte
	var errMsg *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, years, status, result, error, started_at, completed_at FROM parse_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &yearsJSON, &r.Status, &resultNull, &errMsg, &r.StartedAt, &r.CompletedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if err := json.Unmarshal(yearsJSON, &r.Years); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal years")
	}
	if resultNull != nil {
		r.Result = &model.ParseRunResult{}
		if err := json.Unmarshal(*resultNull, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ParseRun, error) {
	query := `SELECT id, years, status, result, error, started_at, completed_at FROM parse_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if !filter.StartedAfter.IsZero() {
		query += fmt.Sprintf(` AND started_at > $%d`, argIdx)
		args = append(args, filter.StartedAfter.UTC())
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ParseRun
	for rows.Next() {
		var r model.ParseRun
		var yearsJSON []byte
		var resultNull *[]byte
		var errMsg *string

		if err := rows.Scan(&r.ID, &yearsJSON, &r.Status, &resultNull, &errMsg, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(yearsJSON, &r.Years); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal years")
		}
		if resultNull != nil {
			r.Result = &model.ParseRunResult{}
			if err := json.Unmarshal(*resultNull, r.Result); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal result")
			}
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// ReplaceYearRecords swaps out all stored records for a year inside one
// transaction: delete, then COPY the replacement set. Readers never observe
// a half-loaded year.
func (s *PostgresStore) ReplaceYearRecords(ctx context.Context, year int, records []model.PropertyRecord) (int64, error) {
	rows := make([][]any, 0, len(records))
	for i := range records {
		row, err := recordRow(records[i])
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin replace records")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM property_records WHERE year = $1`, year); err != nil {
		return 0, eris.Wrapf(err, "postgres: delete records for year %d", year)
	}

	n, err := db.CopyFrom(ctx, tx, "property_records", recordColumns, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: load records for year %d", year)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrapf(err, "postgres: commit records for year %d", year)
	}
	return n, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.PropertyRecord, error) {
	query := `SELECT year, parcel_code, owner_name, owner_address, owner_city_state_zip,
	       description, land_value, improvement_value, total_value, tax_amount,
	       acreage, property_class, zone, account_number, district,
	       first_half_tax, second_half_tax, deferred_value, owner_confidence
	  FROM property_records WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Year != 0 {
		query += fmt.Sprintf(` AND year = $%d`, argIdx)
		args = append(args, filter.Year)
		argIdx++
	}
	if filter.District != "" {
		query += fmt.Sprintf(` AND district = $%d`, argIdx)
		args = append(args, filter.District)
		argIdx++
	}
	if filter.Class != nil {
		query += fmt.Sprintf(` AND property_class = $%d`, argIdx)
		args = append(args, *filter.Class)
		argIdx++
	}
	query += ` ORDER BY year, parcel_code`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []model.PropertyRecord
	for rows.Next() {
		var r model.PropertyRecord
		var ocJSON []byte

		if err := rows.Scan(
			&r.Year, &r.ParcelCode, &r.OwnerName, &r.OwnerAddress, &r.OwnerCityStateZip,
			&r.Description, &r.LandValue, &r.ImprovementValue, &r.TotalValue, &r.TaxAmount,
			&r.Acreage, &r.PropertyClass, &r.Zone, &r.AccountNumber, &r.District,
			&r.FirstHalfTax, &r.SecondHalfTax, &r.DeferredValue, &ocJSON,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		if len(ocJSON) > 0 {
			r.OwnerConfidence = &model.OwnerConfidence{}
			if err := json.Unmarshal(ocJSON, r.OwnerConfidence); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal owner confidence")
			}
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list records iterate")
}

func (s *PostgresStore) SaveSummaries(ctx context.Context, summaries []*model.YearSummary) error {
	rows := make([][]any, 0, len(summaries))
	now := time.Now().UTC()
	for _, sum := range summaries {
		summaryJSON, err := json.Marshal(sum)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal summary %d", sum.Year)
		}
		rows = append(rows, []any{sum.Year, summaryJSON, now})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "year_summaries",
		Columns:      []string{"year", "summary", "updated_at"},
		ConflictKeys: []string{"year"},
	}, rows)
	return eris.Wrap(err, "postgres: save summaries")
}

func (s *PostgresStore) ListSummaries(ctx context.Context) ([]*model.YearSummary, error) {
	rows, err := s.pool.Query(ctx, `SELECT summary FROM year_summaries ORDER BY year`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list summaries")
	}
	defer rows.Close()

	var summaries []*model.YearSummary
	for rows.Next() {
		var summaryJSON []byte
		if err := rows.Scan(&summaryJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan summary")
		}
		sum := &model.YearSummary{}
		if err := json.Unmarshal(summaryJSON, sum); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal summary")
		}
		summaries = append(summaries, sum)
	}
	return summaries, eris.Wrap(rows.Err(), "postgres: list summaries iterate")
}
