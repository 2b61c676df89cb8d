package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"matchsheet/internal/stats"
)

// SQLSink stores rows in a SQL table named after the sheet. Used for both
// local SQLite files and remote libSQL databases.
type SQLSink struct {
	db     *sql.DB
	table  string
	header []string
}

// NewSQLite opens (creating if needed) a local SQLite database
func NewSQLite(ctx context.Context, path, table string, header []string) (*SQLSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create db directory: %w", ErrSinkUnavailable, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrSinkUnavailable, err)
	}
	return newSQLSink(ctx, db, table, header)
}

// NewLibSQL connects to a Turso/libSQL database
func NewLibSQL(ctx context.Context, url, token, table string, header []string) (*SQLSink, error) {
	connStr := url
	if token != "" {
		connStr = fmt.Sprintf("%s?authToken=%s", url, token)
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to libsql: %w", ErrSinkUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping libsql: %w", ErrSinkUnavailable, err)
	}

	return newSQLSink(ctx, db, table, header)
}

func newSQLSink(ctx context.Context, db *sql.DB, table string, header []string) (*SQLSink, error) {
	s := &SQLSink{db: db, table: table, header: header}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// init creates the table. Stat columns are untyped so each cell keeps the
// type it was written with.
func (s *SQLSink) init(ctx context.Context) error {
	columns := []string{
		"id INTEGER PRIMARY KEY AUTOINCREMENT",
		"game_id INTEGER NOT NULL",
		"recorded_at TEXT NOT NULL",
	}
	for _, name := range s.header {
		columns = append(columns, quoteIdent(name))
	}

	schema := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quoteIdent(s.table), strings.Join(columns, ",\n\t"))
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to create table %s: %w", ErrSinkUnavailable, s.table, err)
	}
	return nil
}

// Append inserts the row
func (s *SQLSink) Append(ctx context.Context, gameID int64, row stats.Row) error {
	if err := checkWidth(s.header, row); err != nil {
		return err
	}

	columns := []string{"game_id", "recorded_at"}
	for _, name := range s.header {
		columns = append(columns, quoteIdent(name))
	}
	args := append([]interface{}{gameID, time.Now().UTC().Format(time.RFC3339)}, row...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(s.table), strings.Join(columns, ", "), placeholders)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: failed to insert game %d: %w", ErrSinkUnavailable, gameID, err)
	}
	return nil
}

// Close closes the database
func (s *SQLSink) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection
func (s *SQLSink) DB() *sql.DB {
	return s.db
}
