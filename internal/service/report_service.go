package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
	"github.com/tejasgroup/expenseflow/internal/repository"
)

// SummaryRow is one aggregation bucket: exact total and record count
type SummaryRow struct {
	Key              string          `json:"key"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int             `json:"transaction_count"`
}

// MatrixRow is one brand row of the brand x month pivot
type MatrixRow struct {
	Brand    string            `json:"brand"`
	Cells    []decimal.Decimal `json:"cells"`
	RowTotal decimal.Decimal   `json:"row_total"`
}

// BrandMonthMatrix is the pivot of amounts by brand and calendar month,
// with zero-filled gaps and a row-total column
type BrandMonthMatrix struct {
	Months []string    `json:"months"`
	Rows   []MatrixRow `json:"rows"`
}

// ReportService computes read-only aggregations over the expense store.
// All sums use exact decimal arithmetic; nothing here mutates.
type ReportService struct {
	expenses ExpenseStore
	logger   *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(expenses ExpenseStore, logger *zap.Logger) *ReportService {
	return &ReportService{
		expenses: expenses,
		logger:   logger,
	}
}

// BrandSummary sums amount and counts records per brand. Every brand in
// the fixed set appears, zero-filled if it has no matching records. An
// optional overall-status filter narrows the record set.
func (s *ReportService) BrandSummary(statusFilter entity.OverallStatus) ([]SummaryRow, error) {
	records, err := s.expenses.List(repository.Filter{Overall: statusFilter})
	if err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, 0, len(entity.Brands))
	byBrand := groupTotals(records, func(r *entity.ExpenseRecord) string { return r.Brand })
	for _, brand := range entity.Brands {
		row := byBrand[brand]
		row.Key = brand
		rows = append(rows, row)
	}
	return rows, nil
}

// CategorySummary sums amount and counts records per category over the
// full record set, zero-filled across the fixed category set
func (s *ReportService) CategorySummary() ([]SummaryRow, error) {
	records, err := s.expenses.List(repository.Filter{})
	if err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, 0, len(entity.CategoryNames))
	byCategory := groupTotals(records, func(r *entity.ExpenseRecord) string { return r.Category })
	for _, category := range entity.CategoryNames {
		row := byCategory[category]
		row.Key = category
		rows = append(rows, row)
	}
	return rows, nil
}

// MonthSummary sums amount and counts records per calendar month of the
// expense date, in chronological order
func (s *ReportService) MonthSummary() ([]SummaryRow, error) {
	records, err := s.expenses.List(repository.Filter{})
	if err != nil {
		return nil, err
	}

	byMonth := groupTotals(records, monthKey)
	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	rows := make([]SummaryRow, 0, len(months))
	for _, month := range months {
		row := byMonth[month]
		row.Key = month
		rows = append(rows, row)
	}
	return rows, nil
}

// Matrix computes the brand x month pivot over the full record set.
// The month axis runs contiguously from the earliest to the latest
// expense month; gaps are zero-filled and each row carries its total.
func (s *ReportService) Matrix() (*BrandMonthMatrix, error) {
	records, err := s.expenses.List(repository.Filter{})
	if err != nil {
		return nil, err
	}

	months := monthRange(records)
	index := make(map[string]int, len(months))
	for i, month := range months {
		index[month] = i
	}

	matrix := &BrandMonthMatrix{Months: months}
	cells := make(map[string][]decimal.Decimal, len(entity.Brands))
	for _, brand := range entity.Brands {
		row := make([]decimal.Decimal, len(months))
		for i := range row {
			row[i] = decimal.Zero
		}
		cells[brand] = row
	}

	for _, record := range records {
		row, ok := cells[record.Brand]
		if !ok {
			continue
		}
		row[index[monthKey(record)]] = row[index[monthKey(record)]].Add(record.Amount)
	}

	for _, brand := range entity.Brands {
		rowTotal := decimal.Zero
		for _, cell := range cells[brand] {
			rowTotal = rowTotal.Add(cell)
		}
		matrix.Rows = append(matrix.Rows, MatrixRow{
			Brand:    brand,
			Cells:    cells[brand],
			RowTotal: rowTotal,
		})
	}
	return matrix, nil
}

// PercentOfTotal returns part/total*100 rounded to one decimal place.
// This rounding is display-only; callers keep the exact values.
func PercentOfTotal(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
}

func groupTotals(records []*entity.ExpenseRecord, key func(*entity.ExpenseRecord) string) map[string]SummaryRow {
	totals := make(map[string]SummaryRow)
	for _, record := range records {
		row := totals[key(record)]
		row.TotalAmount = row.TotalAmount.Add(record.Amount)
		row.TransactionCount++
		totals[key(record)] = row
	}
	return totals
}

func monthKey(record *entity.ExpenseRecord) string {
	return record.ExpenseDate.Format("2006-01")
}

// monthRange returns every calendar month from the earliest to the latest
// expense date, inclusive
func monthRange(records []*entity.ExpenseRecord) []string {
	if len(records) == 0 {
		return nil
	}

	min, max := records[0].ExpenseDate, records[0].ExpenseDate
	for _, record := range records[1:] {
		if record.ExpenseDate.Before(min) {
			min = record.ExpenseDate
		}
		if record.ExpenseDate.After(max) {
			max = record.ExpenseDate
		}
	}

	var months []string
	cursor := time.Date(min.Year(), min.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(max.Year(), max.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		months = append(months, cursor.Format("2006-01"))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}
