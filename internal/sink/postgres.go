package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"matchsheet/internal/stats"
)

// PostgresSink stores rows in a Postgres table named after the sheet.
// Cells are stored as TEXT, mirroring what a spreadsheet holds.
type PostgresSink struct {
	pool   *pgxpool.Pool
	table  string
	header []string
}

// NewPostgres creates a connection pool and the table
func NewPostgres(ctx context.Context, dbURL, table string, header []string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create pool: %w", ErrSinkUnavailable, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", ErrSinkUnavailable, err)
	}

	s := &PostgresSink{pool: pool, table: table, header: header}
	if _, err := pool.Exec(ctx, s.schema()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to create table %s: %w", ErrSinkUnavailable, table, err)
	}
	return s, nil
}

func (s *PostgresSink) schema() string {
	columns := []string{
		"id BIGSERIAL PRIMARY KEY",
		"game_id BIGINT NOT NULL",
		"recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()",
	}
	for _, name := range s.header {
		columns = append(columns, quoteIdent(name)+" TEXT")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quoteIdent(s.table), strings.Join(columns, ",\n\t"))
}

func (s *PostgresSink) insert() string {
	columns := []string{"game_id", "recorded_at"}
	placeholders := []string{"$1", "$2"}
	for i, name := range s.header {
		columns = append(columns, quoteIdent(name))
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+3))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(s.table), strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

// Append inserts the row
func (s *PostgresSink) Append(ctx context.Context, gameID int64, row stats.Row) error {
	if err := checkWidth(s.header, row); err != nil {
		return err
	}

	args := []interface{}{gameID, time.Now().UTC()}
	args = append(args, textCells(row)...)
	if _, err := s.pool.Exec(ctx, s.insert(), args...); err != nil {
		return fmt.Errorf("%w: failed to insert game %d: %w", ErrSinkUnavailable, gameID, err)
	}
	return nil
}

// Close closes the pool
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

func textCells(row stats.Row) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = fmt.Sprint(v)
	}
	return cells
}
