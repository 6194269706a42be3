package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
	"github.com/tejasgroup/expenseflow/internal/domain/workflow"
	"github.com/tejasgroup/expenseflow/internal/repository"
)

func reportRecord(brand, category, amount string, date time.Time, paid bool) *entity.ExpenseRecord {
	r := entity.NewExpenseRecord()
	r.Brand = brand
	r.Category = category
	r.Amount = decimal.RequireFromString(amount)
	r.ExpenseDate = date
	if paid {
		r.Stage1.Status = entity.StageApproved
		r.Stage2.Status = entity.StageApproved
		r.Stage3.Status = entity.StagePaid
	}
	return r
}

// reportStore serves a fixed record set, honouring the Overall filter the
// way the real repository does.
func reportStore(records ...*entity.ExpenseRecord) *mockExpenseStore {
	return &mockExpenseStore{
		listFunc: func(filter repository.Filter) ([]*entity.ExpenseRecord, error) {
			if filter.Overall == "" {
				return records, nil
			}
			var matched []*entity.ExpenseRecord
			for _, record := range records {
				if workflow.Overall(record) == filter.Overall {
					matched = append(matched, record)
				}
			}
			return matched, nil
		},
	}
}

func TestReportService_BrandSummary(t *testing.T) {
	june := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store := reportStore(
		reportRecord(entity.BrandTejas, entity.CategoryMarketing, "1000.00", june, true),
		reportRecord(entity.BrandTejas, entity.CategoryMarketing, "500.00", june, true),
		reportRecord(entity.BrandTejas, entity.CategoryTravel, "2000.00", june, false),
		reportRecord(entity.BrandAranya, entity.CategoryRent, "750.50", june, true),
	)
	svc := NewReportService(store, zap.NewNop())

	rows, err := svc.BrandSummary(entity.OverallPaid)
	if err != nil {
		t.Fatalf("BrandSummary() error = %v", err)
	}
	if len(rows) != len(entity.Brands) {
		t.Fatalf("row count = %d, want one per brand (%d)", len(rows), len(entity.Brands))
	}

	byBrand := make(map[string]SummaryRow)
	for _, row := range rows {
		byBrand[row.Key] = row
	}

	tejas := byBrand[entity.BrandTejas]
	if !tejas.TotalAmount.Equal(decimal.RequireFromString("1500.00")) {
		t.Errorf("Tejas paid total = %s, want 1500.00 (pending record excluded)", tejas.TotalAmount)
	}
	if tejas.TransactionCount != 2 {
		t.Errorf("Tejas paid count = %d, want 2", tejas.TransactionCount)
	}

	mithila := byBrand[entity.BrandMithila]
	if !mithila.TotalAmount.IsZero() || mithila.TransactionCount != 0 {
		t.Errorf("brand with no records must be zero-filled, got %+v", mithila)
	}
}

func TestReportService_CategorySummary(t *testing.T) {
	june := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store := reportStore(
		reportRecord(entity.BrandTejas, entity.CategoryMarketing, "100.10", june, false),
		reportRecord(entity.BrandAranya, entity.CategoryMarketing, "200.20", june, true),
		reportRecord(entity.BrandTejas, entity.CategoryRent, "5000.00", june, false),
	)
	svc := NewReportService(store, zap.NewNop())

	rows, err := svc.CategorySummary()
	if err != nil {
		t.Fatalf("CategorySummary() error = %v", err)
	}

	byCategory := make(map[string]SummaryRow)
	for _, row := range rows {
		byCategory[row.Key] = row
	}
	marketing := byCategory[entity.CategoryMarketing]
	if !marketing.TotalAmount.Equal(decimal.RequireFromString("300.30")) {
		t.Errorf("Marketing total = %s, want 300.30 (exact, no float drift)", marketing.TotalAmount)
	}
	if marketing.TransactionCount != 2 {
		t.Errorf("Marketing count = %d, want 2", marketing.TransactionCount)
	}
}

func TestReportService_MonthSummary(t *testing.T) {
	store := reportStore(
		reportRecord(entity.BrandTejas, entity.CategoryRent, "100.00", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), false),
		reportRecord(entity.BrandTejas, entity.CategoryRent, "150.00", time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC), false),
		reportRecord(entity.BrandTejas, entity.CategoryRent, "900.00", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), false),
	)
	svc := NewReportService(store, zap.NewNop())

	rows, err := svc.MonthSummary()
	if err != nil {
		t.Fatalf("MonthSummary() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(rows))
	}
	if rows[0].Key != "2025-01" || rows[1].Key != "2025-03" {
		t.Errorf("months out of order: %s, %s", rows[0].Key, rows[1].Key)
	}
	if !rows[1].TotalAmount.Equal(decimal.RequireFromString("250.00")) {
		t.Errorf("2025-03 total = %s, want 250.00", rows[1].TotalAmount)
	}
}

func TestReportService_Matrix(t *testing.T) {
	store := reportStore(
		reportRecord(entity.BrandTejas, entity.CategoryRent, "100.00", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), false),
		reportRecord(entity.BrandAranya, entity.CategoryRent, "40.00", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), false),
		reportRecord(entity.BrandTejas, entity.CategoryRent, "60.00", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), false),
	)
	svc := NewReportService(store, zap.NewNop())

	matrix, err := svc.Matrix()
	if err != nil {
		t.Fatalf("Matrix() error = %v", err)
	}

	// February has no records but the axis is contiguous.
	want := []string{"2025-01", "2025-02", "2025-03"}
	if len(matrix.Months) != len(want) {
		t.Fatalf("months = %v, want %v", matrix.Months, want)
	}
	for i, month := range want {
		if matrix.Months[i] != month {
			t.Fatalf("months = %v, want %v", matrix.Months, want)
		}
	}

	rowsByBrand := make(map[string]MatrixRow)
	for _, row := range matrix.Rows {
		rowsByBrand[row.Brand] = row
	}

	tejas := rowsByBrand[entity.BrandTejas]
	if !tejas.Cells[0].Equal(decimal.RequireFromString("100.00")) ||
		!tejas.Cells[1].IsZero() ||
		!tejas.Cells[2].Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("Tejas cells = %v", tejas.Cells)
	}
	if !tejas.RowTotal.Equal(decimal.RequireFromString("160.00")) {
		t.Errorf("Tejas row total = %s, want 160.00", tejas.RowTotal)
	}

	mithila := rowsByBrand[entity.BrandMithila]
	if !mithila.RowTotal.IsZero() {
		t.Errorf("empty brand row total = %s, want 0", mithila.RowTotal)
	}
}

func TestReportService_Matrix_Empty(t *testing.T) {
	svc := NewReportService(reportStore(), zap.NewNop())

	matrix, err := svc.Matrix()
	if err != nil {
		t.Fatalf("Matrix() error = %v", err)
	}
	if len(matrix.Months) != 0 {
		t.Errorf("empty store produced months %v", matrix.Months)
	}
}

func TestPercentOfTotal(t *testing.T) {
	tests := []struct {
		part, total, expected string
	}{
		{"1500", "4500", "33.3"},
		{"1", "3", "33.3"},
		{"2", "3", "66.7"},
		{"0", "100", "0"},
		{"100", "0", "0"},
	}
	for _, tt := range tests {
		part := decimal.RequireFromString(tt.part)
		total := decimal.RequireFromString(tt.total)
		if got := PercentOfTotal(part, total); got.String() != tt.expected {
			t.Errorf("PercentOfTotal(%s, %s) = %s, want %s", tt.part, tt.total, got, tt.expected)
		}
	}
}
