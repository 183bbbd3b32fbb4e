package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invoicerecon/internal/domain"
)

const (
	ItemSheet    = "Item_Details"
	SummarySheet = "Invoice_Summary"

	tableStyle = "TableStyleMedium9"
)

// WorkbookContentType is the MIME type of the XLSX workbook.
const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteWorkbook writes the item and summary projections of records to w as
// an XLSX workbook. Each non-empty sheet is formatted as a table.
func WriteWorkbook(w io.Writer, records []*domain.InvoiceRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ItemSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := writeSheet(f, ItemSheet, "ItemDetailsTable", ItemColumns(), ItemRows(records)); err != nil {
		return err
	}
	if err := writeSheet(f, SummarySheet, "InvoiceSummaryTable", SummaryColumns(), SummaryRows(records)); err != nil {
		return err
	}

	if idx, err := f.GetSheetIndex(ItemSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet, table string, columns []string, rows [][]any) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	for i := range rows {
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, start, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}

	if len(rows) == 0 {
		return nil
	}

	end, err := excelize.CoordinatesToCellName(len(columns), len(rows)+1)
	if err != nil {
		return err
	}
	showStripes := true
	if err := f.AddTable(sheet, &excelize.Table{
		Range:          "A1:" + end,
		Name:           table,
		StyleName:      tableStyle,
		ShowRowStripes: &showStripes,
	}); err != nil {
		return fmt.Errorf("add %s table: %w", sheet, err)
	}
	return nil
}
