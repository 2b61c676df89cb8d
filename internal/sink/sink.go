// Package sink appends projected match rows to the configured destination.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"matchsheet/internal/config"
	"matchsheet/internal/stats"
)

// ErrSinkUnavailable means the destination could not be opened or written
var ErrSinkUnavailable = errors.New("sink unavailable")

// Sink receives one row per recorded game
type Sink interface {
	// Append writes the row as a single operation
	Append(ctx context.Context, gameID int64, row stats.Row) error
	Close() error
}

// Open connects to the sink selected by settings
func Open(ctx context.Context, s *config.Settings) (Sink, error) {
	header := s.Layout.Header()

	switch s.Sink {
	case config.SinkSheets:
		return NewSheets(ctx, s.WorkbookID, s.WorkbookName, s.SheetName, s.GoogleCredentials)
	case config.SinkSQLite:
		return NewSQLite(ctx, s.SinkURL, s.SheetName, header)
	case config.SinkLibSQL:
		return NewLibSQL(ctx, s.SinkURL, s.SinkToken, s.SheetName, header)
	case config.SinkPostgres:
		return NewPostgres(ctx, s.SinkURL, s.SheetName, header)
	case config.SinkMongo:
		return NewMongo(ctx, s.SinkURL, s.SinkDatabase, s.SheetName, header)
	default:
		return nil, fmt.Errorf("%w: unknown sink %q", ErrSinkUnavailable, s.Sink)
	}
}

func checkWidth(header []string, row stats.Row) error {
	if len(row) != len(header) {
		return fmt.Errorf("%w: row has %d cells, destination has %d columns", ErrSinkUnavailable, len(row), len(header))
	}
	return nil
}

// quoteIdent quotes a table or column name for SQL
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
