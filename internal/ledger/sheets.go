package ledger

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheet layout: column A is the user ID, column B the comma-joined channel
// list. Rows are matched by exact user ID.
const (
	sheetReadRange   = "A1:B"
	sheetAppendRange = "A1"
)

// valuesAPI is the slice of the Sheets values API the store uses,
// extracted so tests can fake it.
type valuesAPI interface {
	get(ctx context.Context, readRange string) (*sheets.ValueRange, error)
	update(ctx context.Context, writeRange string, vr *sheets.ValueRange) error
	append(ctx context.Context, writeRange string, vr *sheets.ValueRange) error
}

// googleValues adapts *sheets.Service to valuesAPI.
type googleValues struct {
	svc           *sheets.Service
	spreadsheetID string
}

func (g *googleValues) get(ctx context.Context, readRange string) (*sheets.ValueRange, error) {
	return g.svc.Spreadsheets.Values.Get(g.spreadsheetID, readRange).Context(ctx).Do()
}

func (g *googleValues) update(ctx context.Context, writeRange string, vr *sheets.ValueRange) error {
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (g *googleValues) append(ctx context.Context, writeRange string, vr *sheets.ValueRange) error {
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

// SheetsStore keeps the removal ledger in a Google spreadsheet.
type SheetsStore struct {
	values valuesAPI
}

// NewSheetsStore creates a sheets-backed store using a service account
// credentials file.
func NewSheetsStore(ctx context.Context, spreadsheetID, credentialsFile string) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsStore{values: &googleValues{svc: svc, spreadsheetID: spreadsheetID}}, nil
}

// Record writes the channel list for user, overwriting the existing row if
// one exists and appending a new row otherwise.
func (s *SheetsStore) Record(ctx context.Context, user string, channels []string) error {
	row, _, err := s.findRow(ctx, user)
	if err != nil && err != ErrRecordNotFound {
		return err
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{{user, joinChannels(channels)}}}
	if err == ErrRecordNotFound {
		if err := s.values.append(ctx, sheetAppendRange, vr); err != nil {
			return fmt.Errorf("failed to append removal row: %w", err)
		}
		return nil
	}

	writeRange := fmt.Sprintf("A%d:B%d", row, row)
	if err := s.values.update(ctx, writeRange, vr); err != nil {
		return fmt.Errorf("failed to update removal row: %w", err)
	}
	return nil
}

// RestoreChannels returns the stored channel list for user.
func (s *SheetsStore) RestoreChannels(ctx context.Context, user string) ([]string, error) {
	record, err := s.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	return record.Channels, nil
}

// Get returns the full removal record for user.
func (s *SheetsStore) Get(ctx context.Context, user string) (*RemovalRecord, error) {
	_, record, err := s.findRow(ctx, user)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// findRow scans the sheet for the row whose first cell equals user and
// returns its 1-based row number.
func (s *SheetsStore) findRow(ctx context.Context, user string) (int, *RemovalRecord, error) {
	resp, err := s.values.get(ctx, sheetReadRange)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read ledger sheet: %w", err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		cell, ok := row[0].(string)
		if !ok || cell != user {
			continue
		}
		record := &RemovalRecord{User: user}
		if len(row) > 1 {
			if joined, ok := row[1].(string); ok {
				record.Channels = splitChannels(joined)
			}
		}
		return i + 1, record, nil
	}

	return 0, nil, ErrRecordNotFound
}
