// Package export renders the stock adjustment ledger as an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"retailops/internal/domain/inventory"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const ledgerSheet = "Adjustments"

var ledgerHeadings = []string{
	"Date", "Item ID", "Warehouse ID", "Method", "Type",
	"Quantity", "Previous", "New", "Reference", "Note", "Created By",
}

// WriteLedger writes one row per adjustment, in the given order, below a header row.
func WriteLedger(w io.Writer, rows []*inventory.StockAdjustment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(ledgerHeadings))
	for i, h := range ledgerHeadings {
		header[i] = h
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, a := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			a.CreatedAt.UTC().Format(time.RFC3339),
			a.ItemID.String(),
			a.WarehouseID.String(),
			string(a.AdjustmentMethod),
			string(a.AdjustmentType),
			a.Quantity,
			a.PreviousQuantity,
			a.NewQuantity,
			a.Reference,
			a.Note,
			a.CreatedBy,
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(ledgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// LedgerFilename names the export file for the moment it was generated.
func LedgerFilename(now time.Time) string {
	return "stock-adjustments-" + now.UTC().Format("20060102-150405") + ".xlsx"
}
