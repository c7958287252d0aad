package goals

import (
	"context"
	"fmt"

	"moodledger/internal/core"

	"github.com/xuri/excelize/v2"
)

// Export surface, fixed by the download contract.
const (
	ExportSheetName = "SharedGoals"
	ExportFilename  = "shared_goals.xlsx"
	ExportMIMEType  = "application/vnd.ms-excel"
)

// Export serializes all current goal rows into an in-memory xlsx
// workbook. An empty goal table reports ErrNothingToExport instead of
// producing an empty file.
func (t *Tracker) Export(ctx context.Context) ([]byte, error) {
	goals, err := t.store.ListGoals(ctx)
	if err != nil {
		return nil, core.WrapKind(core.ErrPersistence, err)
	}
	if len(goals) == 0 {
		return nil, core.ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := []string{"Name", "Target", "Saved"}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ExportSheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	for row, g := range goals {
		values := []interface{}{g.Name, g.Target.Units(), g.Saved.Units()}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(ExportSheetName, cell, v); err != nil {
				return nil, fmt.Errorf("write goal row %d: %w", row+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
