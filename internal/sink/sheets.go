package sink

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"matchsheet/internal/stats"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// SheetsSink appends rows to a worksheet of a Google Sheets workbook
type SheetsSink struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheets opens the workbook by id, or by title when id is empty
func NewSheets(ctx context.Context, workbookID, workbookName, sheetName, credentialsFile string) (*SheetsSink, error) {
	return newSheets(ctx, workbookID, workbookName, sheetName,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveMetadataReadonlyScope),
	)
}

func newSheets(ctx context.Context, workbookID, workbookName, sheetName string, opts ...option.ClientOption) (*SheetsSink, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create sheets client: %w", ErrSinkUnavailable, err)
	}

	if workbookID == "" {
		workbookID, err = findWorkbook(ctx, workbookName, opts...)
		if err != nil {
			return nil, err
		}
	}

	return &SheetsSink{
		service:       service,
		spreadsheetID: workbookID,
		sheetName:     sheetName,
	}, nil
}

// findWorkbook resolves a workbook title to its file id through Drive
func findWorkbook(ctx context.Context, name string, opts ...option.ClientOption) (string, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create drive client: %w", ErrSinkUnavailable, err)
	}

	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), spreadsheetMimeType)
	list, err := service.Files.List().Q(q).Fields("files(id, name)").PageSize(10).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: failed to search for workbook %q: %w", ErrSinkUnavailable, name, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("%w: workbook %q not found", ErrSinkUnavailable, name)
	}
	return list.Files[0].Id, nil
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// A1 range covering the whole worksheet; append writes after the last row of the table
func (s *SheetsSink) appendRange() string {
	return fmt.Sprintf("'%s'!A1", strings.ReplaceAll(s.sheetName, "'", "''"))
}

// Append writes the row below the last filled row of the worksheet
func (s *SheetsSink) Append(ctx context.Context, gameID int64, row stats.Row) error {
	values := &sheets.ValueRange{
		Values: [][]interface{}{row},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.appendRange(), values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: failed to append game %d to %s: %w", ErrSinkUnavailable, gameID, s.sheetName, err)
	}
	return nil
}

// SpreadsheetID returns the resolved workbook id
func (s *SheetsSink) SpreadsheetID() string {
	return s.spreadsheetID
}

// Close is a no-op; the sheets client holds no connection
func (s *SheetsSink) Close() error {
	return nil
}
