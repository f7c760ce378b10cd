// Package history provides history stores backed by external databases.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kilianp07/gymcrowd/core/factory"
	corehistory "github.com/kilianp07/gymcrowd/core/history"
)

// PostgresConf configures the PostgreSQL store.
type PostgresConf struct {
	DSN   string `json:"dsn"`
	Table string `json:"table"`
}

func init() {
	if err := corehistory.RegisterStore("postgres", func(conf map[string]any) (corehistory.Store, error) {
		var c PostgresConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPostgresStore(context.Background(), c)
	}); err != nil {
		panic(err)
	}
}

// PostgresStore persists records to PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, c PostgresConf) (*PostgresStore, error) {
	if c.DSN == "" {
		return nil, fmt.Errorf("postgres history: dsn is required")
	}
	if c.Table == "" {
		c.Table = "predictions"
	}
	pool, err := pgxpool.New(ctx, c.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &PostgresStore{pool: pool, table: c.Table}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	t := quoteIdent(s.table)
	schema := `
		CREATE TABLE IF NOT EXISTS ` + t + ` (
			id          TEXT PRIMARY KEY,
			ts          TIMESTAMPTZ NOT NULL,
			status      TEXT NOT NULL DEFAULT '',
			model_state TEXT NOT NULL,
			failed      BOOLEAN NOT NULL DEFAULT FALSE,
			record      JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS ` + quoteIdent(s.table+"_ts") + ` ON ` + t + ` (ts)`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Append inserts the record.
func (s *PostgresStore) Append(ctx context.Context, rec corehistory.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	status := ""
	if !rec.Failed() {
		status = rec.Result.Status.String()
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+quoteIdent(s.table)+` (id, ts, status, model_state, failed, record) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Timestamp, status, rec.ModelState, rec.Failed(), b)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Query returns matching records, oldest first.
func (s *PostgresStore) Query(ctx context.Context, q corehistory.Query) ([]corehistory.Record, error) {
	var args []any
	where := ""
	add := func(cond string, v any) {
		args = append(args, v)
		where += " AND " + cond + " $" + strconv.Itoa(len(args))
	}
	if !q.Start.IsZero() {
		add("ts >=", q.Start)
	}
	if !q.End.IsZero() {
		add("ts <=", q.End)
	}
	if q.Status != nil {
		add("status =", q.Status.String())
	}
	if q.DegradedOnly {
		where += " AND model_state = 'degraded'"
	}
	if q.FailedOnly {
		where += " AND failed"
	}
	query := `SELECT record FROM ` + quoteIdent(s.table) + ` WHERE TRUE` + where + ` ORDER BY ts DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []corehistory.Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var r corehistory.Record
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
