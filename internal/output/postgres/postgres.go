// Package postgres upserts the counts table into PostgreSQL, one row per
// board and date. Re-running a count for the same board overwrites the
// stored totals.
package postgres

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crimson-sun/velocity/internal/model"
)

// Table is the destination table.
const Table = "velocity_counts"

// DB is the subset of *pgxpool.Pool the output uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Connect opens a pool for dsn and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres output: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres output: ping: %w", err)
	}
	return pool, nil
}

// Column maps a header name to its column: "create" -> "create_count".
// Category names are SQL keywords, so they are never used bare.
func Column(name string) string { return name + "_count" }

// Output writes rows for one board and run.
type Output struct {
	db      DB
	board   string
	runID   string
	psql    squirrel.StatementBuilderType
	mu      sync.Mutex
	columns []string
}

// New returns an Output writing rows for board, stamped with runID.
func New(db DB, board, runID string) *Output {
	return &Output{
		db:    db,
		board: board,
		runID: runID,
		psql:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// SchemaSQL returns the CREATE TABLE statement for the reported categories.
func SchemaSQL(reported []model.Category) string {
	stmt := "CREATE TABLE IF NOT EXISTS " + Table + " (board TEXT NOT NULL, date DATE NOT NULL"
	for _, c := range reported {
		stmt += ", " + Column(c.String()) + " INTEGER NOT NULL DEFAULT 0"
	}
	return stmt + ", run_id TEXT NOT NULL, updated_at TIMESTAMPTZ NOT NULL DEFAULT now(), PRIMARY KEY (board, date))"
}

// EnsureSchema creates the table if it does not exist.
func (o *Output) EnsureSchema(ctx context.Context) error {
	if _, err := o.db.Exec(ctx, SchemaSQL(model.Reported())); err != nil {
		return fmt.Errorf("postgres output: ensure schema: %w", err)
	}
	return nil
}

// Begin records the value columns. header[0] is the date column.
func (o *Output) Begin(_ context.Context, header []string) error {
	if len(header) == 0 {
		return fmt.Errorf("postgres output: empty header")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.columns = o.columns[:0]
	for _, name := range header[1:] {
		o.columns = append(o.columns, Column(name))
	}
	return nil
}

func (o *Output) Write(ctx context.Context, row model.Row) error {
	o.mu.Lock()
	columns := slices.Clone(o.columns)
	o.mu.Unlock()

	if columns == nil {
		return fmt.Errorf("postgres output: write before begin")
	}
	if len(row.Values) != len(columns) {
		return fmt.Errorf("postgres output: row %s has %d values, want %d", row.Date, len(row.Values), len(columns))
	}

	values := make([]any, 0, len(columns)+3)
	values = append(values, o.board, row.Date.Time())
	for _, v := range row.Values {
		values = append(values, v)
	}
	values = append(values, o.runID)

	suffix := "ON CONFLICT (board, date) DO UPDATE SET "
	for _, c := range columns {
		suffix += c + " = EXCLUDED." + c + ", "
	}
	suffix += "run_id = EXCLUDED.run_id, updated_at = now()"

	sql, args, err := o.psql.Insert(Table).
		Columns(append(append([]string{"board", "date"}, columns...), "run_id")...).
		Values(values...).
		Suffix(suffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres output: build upsert: %w", err)
	}
	if _, err := o.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("postgres output: upsert %s: %w", row.Date, err)
	}
	return nil
}

// Close is a no-op. The caller owns the pool.
func (o *Output) Close() error { return nil }
