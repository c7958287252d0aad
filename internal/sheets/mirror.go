// Package sheets mirrors the shared-goal table to a Google Spreadsheet.
// Shared goals are saved with friends; the spreadsheet is the surface the
// co-savers actually look at. Mirroring is best-effort and one-way: the
// sqlite table stays the source of truth.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"moodledger/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Mirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv builds a mirror from environment configuration.
// Required: GOAL_SPREADSHEET_ID. Optional: GOAL_SHEET_NAME (default
// "SharedGoals"), GOOGLE_CREDENTIALS_JSON for explicit credentials;
// otherwise application default credentials apply.
func NewFromEnv(ctx context.Context) (*Mirror, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOAL_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOAL_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOAL_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "SharedGoals"
	}

	var opts []goption.ClientOption
	if creds := os.Getenv("GOOGLE_CREDENTIALS_JSON"); creds != "" {
		opts = append(opts, goption.WithCredentialsJSON([]byte(creds)))
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Mirror{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// Push replaces the sheet's contents with the current goal table.
func (m *Mirror) Push(ctx context.Context, goals []core.SharedGoal) error {
	_, err := m.svc.Spreadsheets.Values.
		Clear(m.spreadsheetID, m.sheetName, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear goal sheet: %w", err)
	}

	values := [][]interface{}{{"Name", "Target", "Saved", "Progress"}}
	for _, g := range goals {
		progress := ""
		if g.Target.Cents > 0 {
			ratio := float64(g.Saved.Cents) / float64(g.Target.Cents)
			if ratio > 1 {
				ratio = 1
			}
			progress = fmt.Sprintf("%.0f%%", ratio*100)
		}
		values = append(values, []interface{}{g.Name, g.Target.Units(), g.Saved.Units(), progress})
	}

	_, err = m.svc.Spreadsheets.Values.
		Update(m.spreadsheetID, m.sheetName+"!A1", &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update goal sheet: %w", err)
	}
	return nil
}
