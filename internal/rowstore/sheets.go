package rowstore

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valueInputUserEntered makes the API parse written values the way the
// spreadsheet UI would, which is how every existing sheet was populated.
const valueInputUserEntered = "USER_ENTERED"

// Sheets is the production RowStore backed by the Google Sheets API.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheets authenticates with a service-account key (JSON bytes) and binds
// the adapter to one spreadsheet.
func NewSheets(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*Sheets, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Sheets{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func qualify(sheet, rng string) string {
	return sheet + "!" + rng
}

// ReadRange fetches the populated rows of the range.
func (s *Sheets) ReadRange(ctx context.Context, sheet, rng string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, qualify(sheet, rng)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s!%s: %w", sheet, rng, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		cells := make([]string, len(raw))
		for j, v := range raw {
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

// AppendRow appends one row after the range's table.
func (s *Sheets) AppendRow(ctx context.Context, sheet, rng string, row []string) error {
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, qualify(sheet, rng),
		&sheets.ValueRange{Values: [][]any{toAny(row)}}).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	return nil
}

// UpdateRange overwrites the cells of the range.
func (s *Sheets) UpdateRange(ctx context.Context, sheet, rng string, rows [][]string) error {
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = toAny(r)
	}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, qualify(sheet, rng),
		&sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s!%s: %w", sheet, rng, err)
	}
	return nil
}

// BatchUpdate applies all updates in one API call.
func (s *Sheets) BatchUpdate(ctx context.Context, sheet string, updates []RangeUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, len(updates))
	for i, u := range updates {
		values := make([][]any, len(u.Rows))
		for j, r := range u.Rows {
			values[j] = toAny(r)
		}
		data[i] = &sheets.ValueRange{Range: qualify(sheet, u.Range), Values: values}
	}
	_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			Data:             data,
			ValueInputOption: valueInputUserEntered,
		}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch update %s: %w", sheet, err)
	}
	return nil
}

func toAny(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
