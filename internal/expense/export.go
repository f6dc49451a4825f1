package expense

import (
	"fmt"
	"io"

	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Expenses"
	XLSXContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilePattern = "expenses_%s_%s.xlsx"
)

var exportHeaders = []string{"Date", "Description", "Category", "Amount", "Payment Method", "Notes", "Source"}

// ExportFileName names the workbook after the exported window.
func ExportFileName(w period.Window) string {
	return fmt.Sprintf(exportFilePattern, w.Start.Format("20060102"), w.End.Format("20060102"))
}

// WriteWorkbook renders expenses as a single-sheet xlsx workbook into out.
func WriteWorkbook(out io.Writer, expenses []*Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range exportHeaders {
		if err := f.SetCellValue(exportSheet, fmt.Sprintf("%c1", 'A'+i), h); err != nil {
			return err
		}
	}

	for idx, e := range expenses {
		row := idx + 2
		amount, _ := e.Amount.Float64()

		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		source := "manual"
		if e.IsMaterialized() {
			source = *e.SourceRuleType
		}

		values := []interface{}{e.Date.Format(period.DateLayout), e.Description, e.Category, amount, e.PaymentMethod, notes, source}
		for col, v := range values {
			if err := f.SetCellValue(exportSheet, fmt.Sprintf("%c%d", 'A'+col, row), v); err != nil {
				return err
			}
		}
	}

	widths := map[string]float64{"A": 12, "B": 36, "C": 20, "D": 12, "E": 16, "F": 36, "G": 10}
	for col, width := range widths {
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			return err
		}
	}

	return f.Write(out)
}
