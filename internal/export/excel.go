// Package export writes expense data to Excel workbooks for offline review.
// Column order here is presentation, not contract; amounts are written as
// 2-decimal strings so they survive the trip through a spreadsheet intact.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
	"github.com/tejasgroup/expenseflow/internal/domain/workflow"
	"github.com/tejasgroup/expenseflow/internal/service"
)

const (
	sheetExpenses   = "Expenses"
	sheetByBrand    = "By Brand"
	sheetByCategory = "By Category"
	sheetByMonth    = "By Month"
	sheetMatrix     = "Brand x Month"
)

var expenseHeader = []string{
	"ID", "Date", "Brand", "Category", "Subcategory", "Amount",
	"Description", "Submitted By", "Assigned To", "Overall Status",
	"Stage 1", "Stage 1 By", "Stage 2", "Stage 2 By",
	"Stage 3", "Paid By", "Payment Mode", "Transaction Ref",
}

// ExcelWriter builds expense workbooks
type ExcelWriter struct {
	logger *zap.Logger
}

// NewExcelWriter creates a new Excel writer
func NewExcelWriter(logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

// WriteWorkbook writes the expense register and the summary sheets to the
// given path
func (w *ExcelWriter) WriteWorkbook(path string, records []*entity.ExpenseRecord, brands, categories, months []service.SummaryRow, matrix *service.BrandMonthMatrix) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeExpenses(f, records); err != nil {
		return err
	}
	if err := w.writeSummary(f, sheetByBrand, "Brand", brands); err != nil {
		return err
	}
	if err := w.writeSummary(f, sheetByCategory, "Category", categories); err != nil {
		return err
	}
	if err := w.writeSummary(f, sheetByMonth, "Month", months); err != nil {
		return err
	}
	if err := w.writeMatrix(f, matrix); err != nil {
		return err
	}

	// Drop excelize's default sheet.
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Workbook written",
		zap.String("path", path),
		zap.Int("records", len(records)))
	return nil
}

func (w *ExcelWriter) writeExpenses(f *excelize.File, records []*entity.ExpenseRecord) error {
	if _, err := f.NewSheet(sheetExpenses); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := setRow(f, sheetExpenses, 1, toCells(expenseHeader)); err != nil {
		return err
	}

	for i, record := range records {
		row := []interface{}{
			record.ID,
			record.ExpenseDate.Format("2006-01-02"),
			record.Brand,
			record.Category,
			record.Subcategory,
			record.Amount.StringFixed(2),
			record.Description,
			record.SubmittedBy,
			record.AssignedTo,
			workflow.Overall(record).String(),
			record.Stage1.Status.String(),
			record.Stage1.ActorUsername,
			record.Stage2.Status.String(),
			record.Stage2.ActorUsername,
			record.Stage3.Status.String(),
			record.Stage3.ActorUsername,
			record.Stage3.PaymentMode,
			record.Stage3.TransactionRef,
		}
		if err := setRow(f, sheetExpenses, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *ExcelWriter) writeSummary(f *excelize.File, sheet, keyTitle string, rows []service.SummaryRow) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, []interface{}{keyTitle, "Total Amount", "Transactions"}); err != nil {
		return err
	}
	for i, row := range rows {
		cells := []interface{}{row.Key, row.TotalAmount.StringFixed(2), row.TransactionCount}
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func (w *ExcelWriter) writeMatrix(f *excelize.File, matrix *service.BrandMonthMatrix) error {
	if _, err := f.NewSheet(sheetMatrix); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := []interface{}{"Brand"}
	for _, month := range matrix.Months {
		header = append(header, month)
	}
	header = append(header, "Total")
	if err := setRow(f, sheetMatrix, 1, header); err != nil {
		return err
	}

	for i, row := range matrix.Rows {
		cells := []interface{}{row.Brand}
		for _, cell := range row.Cells {
			cells = append(cells, cell.StringFixed(2))
		}
		cells = append(cells, row.RowTotal.StringFixed(2))
		if err := setRow(f, sheetMatrix, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
