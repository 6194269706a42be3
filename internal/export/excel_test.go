package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
	"github.com/tejasgroup/expenseflow/internal/service"
)

func TestExcelWriter_WriteWorkbook(t *testing.T) {
	record := entity.NewExpenseRecord()
	record.ID = 1
	record.ExpenseDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	record.Brand = entity.BrandTejas
	record.Category = entity.CategoryMarketing
	record.Amount = decimal.RequireFromString("1500.5")
	record.SubmittedBy = "ravi"

	brands := []service.SummaryRow{
		{Key: entity.BrandTejas, TotalAmount: decimal.RequireFromString("1500.5"), TransactionCount: 1},
	}
	matrix := &service.BrandMonthMatrix{
		Months: []string{"2025-06"},
		Rows: []service.MatrixRow{
			{Brand: entity.BrandTejas, Cells: []decimal.Decimal{decimal.RequireFromString("1500.5")}, RowTotal: decimal.RequireFromString("1500.5")},
		},
	}

	path := filepath.Join(t.TempDir(), "expenses.xlsx")
	writer := NewExcelWriter(zap.NewNop())
	require.NoError(t, writer.WriteWorkbook(path, []*entity.ExpenseRecord{record}, brands, nil, nil, matrix))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Amounts round-trip as exact 2-decimal strings.
	amount, err := f.GetCellValue("Expenses", "F2")
	require.NoError(t, err)
	assert.Equal(t, "1500.50", amount)

	overall, err := f.GetCellValue("Expenses", "J2")
	require.NoError(t, err)
	assert.Equal(t, "Stage 1 Pending", overall)

	brandTotal, err := f.GetCellValue("By Brand", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1500.50", brandTotal)

	rowTotal, err := f.GetCellValue("Brand x Month", "C2")
	require.NoError(t, err)
	assert.Equal(t, "1500.50", rowTotal)

	sheets := f.GetSheetList()
	assert.NotContains(t, sheets, "Sheet1")
}
