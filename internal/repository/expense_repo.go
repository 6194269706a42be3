package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
	"github.com/tejasgroup/expenseflow/internal/domain/workflow"
)

// expenseColumns is the canonical column list used by every SELECT
const expenseColumns = `id, expense_date, brand, category, subcategory, amount,
	description, submitted_by, assigned_to,
	stage1_status, stage1_actor, stage1_decided_at, stage1_remarks,
	stage2_status, stage2_actor, stage2_decided_at, stage2_remarks,
	stage3_status, stage3_actor, stage3_decided_at, stage3_remarks,
	stage3_payment_mode, stage3_transaction_ref,
	created_at`

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Brand       string
	Category    string
	SubmittedBy string
	AssignedTo  string
	DateFrom    *time.Time
	DateTo      *time.Time
	Overall     entity.OverallStatus
	StageStatus map[entity.Stage]entity.StageStatus

	// OldestFirst orders by creation time ascending; stage queues use it
	// so the longest-waiting record is processed first
	OldestFirst bool
}

// ExpenseRepository handles expense record database operations
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new expense record and assigns its ID.
// All three stages start Pending with no actor or timestamp.
func (r *ExpenseRepository) Create(record *entity.ExpenseRecord) error {
	query := `
		INSERT INTO expenses (
			expense_date, brand, category, subcategory, amount,
			description, submitted_by, assigned_to
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		record.ExpenseDate.Format("2006-01-02"),
		record.Brand,
		record.Category,
		record.Subcategory,
		record.Amount.String(),
		record.Description,
		record.SubmittedBy,
		record.AssignedTo,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	record.ID = id

	// Read back the row so server-assigned fields (created_at, stage
	// defaults) are populated on the returned record.
	created, err := r.GetByID(id)
	if err != nil {
		return err
	}
	*record = *created
	return nil
}

// GetByID retrieves an expense record by ID
func (r *ExpenseRepository) GetByID(id int64) (*entity.ExpenseRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM expenses WHERE id = ?", expenseColumns)

	record, err := scanExpense(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: expense %d", ErrNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to get expense", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return record, nil
}

// List retrieves expense records matching the filter.
// Default ordering is creation time descending.
func (r *ExpenseRepository) List(filter Filter) ([]*entity.ExpenseRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.Brand != "" {
		conditions = append(conditions, "brand = ?")
		args = append(args, filter.Brand)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.SubmittedBy != "" {
		conditions = append(conditions, "submitted_by = ?")
		args = append(args, filter.SubmittedBy)
	}
	if filter.AssignedTo != "" {
		conditions = append(conditions, "assigned_to = ?")
		args = append(args, filter.AssignedTo)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "expense_date >= ?")
		args = append(args, filter.DateFrom.Format("2006-01-02"))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "expense_date <= ?")
		args = append(args, filter.DateTo.Format("2006-01-02"))
	}
	for stage, status := range filter.StageStatus {
		if !stage.IsValid() {
			return nil, fmt.Errorf("%w: %d", workflow.ErrInvalidStage, stage)
		}
		conditions = append(conditions, fmt.Sprintf("stage%d_status = ?", stage))
		args = append(args, status.String())
	}
	if cond := overallCondition(filter.Overall); cond != "" {
		conditions = append(conditions, cond)
	}

	query := fmt.Sprintf("SELECT %s FROM expenses", expenseColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if filter.OldestFirst {
		query += " ORDER BY created_at ASC, id ASC"
	} else {
		query += " ORDER BY created_at DESC, id DESC"
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var records []*entity.ExpenseRecord
	for rows.Next() {
		record, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// overallCondition translates a derived overall status into the equivalent
// condition over the stored stage statuses
func overallCondition(status entity.OverallStatus) string {
	switch status {
	case entity.OverallPaid:
		return "stage3_status = 'Paid'"
	case entity.OverallRejected:
		return "(stage1_status = 'Rejected' OR stage2_status = 'Rejected' OR stage3_status = 'Rejected')"
	case entity.OverallPaymentPending:
		return "stage2_status = 'Approved' AND stage3_status = 'Pending'"
	case entity.OverallStage2Pending:
		return "stage1_status = 'Approved' AND stage2_status = 'Pending'"
	case entity.OverallStage1Pending:
		return "stage1_status = 'Pending'"
	default:
		return ""
	}
}

// DecideStage persists a stage decision with a compare-and-swap write:
// the UPDATE only matches while the stage is still Pending (and, for
// stages past the first, the preceding stage is Approved). A write that
// matches no row means someone else already decided the stage, or it is
// not yet its turn - both surface as an invalid transition.
func (r *ExpenseRepository) DecideStage(id int64, stage entity.Stage, state entity.StageState) error {
	if !stage.IsValid() {
		return fmt.Errorf("%w: %d", workflow.ErrInvalidStage, stage)
	}
	if state.Status == entity.StageRejected && strings.TrimSpace(state.Remarks) == "" {
		return fmt.Errorf("%w: rejecting stage %d of expense %d", workflow.ErrMissingRemarks, stage, id)
	}

	set := fmt.Sprintf(
		"stage%[1]d_status = ?, stage%[1]d_actor = ?, stage%[1]d_decided_at = ?, stage%[1]d_remarks = ?",
		stage)
	args := []interface{}{state.Status.String(), state.ActorUsername, state.DecidedAt, state.Remarks}

	if stage == entity.StageAccounts {
		set += ", stage3_payment_mode = ?, stage3_transaction_ref = ?"
		args = append(args, state.PaymentMode, state.TransactionRef)
	}

	guard := fmt.Sprintf("id = ? AND stage%d_status = 'Pending'", stage)
	args = append(args, id)
	if stage > entity.StageBrandHead {
		guard += fmt.Sprintf(" AND stage%d_status = 'Approved'", stage.Prev())
	}

	query := fmt.Sprintf("UPDATE expenses SET %s WHERE %s", set, guard)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		r.logger.Error("Failed to decide stage",
			zap.Int64("id", id),
			zap.Int("stage", int(stage)),
			zap.Error(err))
		return fmt.Errorf("failed to decide stage: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		if _, getErr := r.GetByID(id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: stage %d of expense %d already decided or not yet open", workflow.ErrInvalidTransition, stage, id)
	}
	return nil
}

// Delete removes an expense record. This is an administrative override
// outside the workflow contract; the workflow itself never deletes.
func (r *ExpenseRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete expense", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %d", ErrNotFound, id)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*entity.ExpenseRecord, error) {
	var record entity.ExpenseRecord
	var amount string
	var s1, s2, s3 string
	var d1, d2, d3 sql.NullTime

	// expense_date is declared DATE, so the driver hands it back as a
	// time.Time already.
	err := row.Scan(
		&record.ID,
		&record.ExpenseDate,
		&record.Brand,
		&record.Category,
		&record.Subcategory,
		&amount,
		&record.Description,
		&record.SubmittedBy,
		&record.AssignedTo,
		&s1, &record.Stage1.ActorUsername, &d1, &record.Stage1.Remarks,
		&s2, &record.Stage2.ActorUsername, &d2, &record.Stage2.Remarks,
		&s3, &record.Stage3.ActorUsername, &d3, &record.Stage3.Remarks,
		&record.Stage3.PaymentMode,
		&record.Stage3.TransactionRef,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	record.Stage1.Status = entity.StageStatus(s1)
	record.Stage2.Status = entity.StageStatus(s2)
	record.Stage3.Status = entity.StageStatus(s3)
	if d1.Valid {
		record.Stage1.DecidedAt = &d1.Time
	}
	if d2.Valid {
		record.Stage2.DecidedAt = &d2.Time
	}
	if d3.Valid {
		record.Stage3.DecidedAt = &d3.Time
	}

	return &record, nil
}
