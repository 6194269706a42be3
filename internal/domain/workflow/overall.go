package workflow

import "github.com/tejasgroup/expenseflow/internal/domain/entity"

// Overall derives the record's overall status from its three stage statuses.
// Precedence, first match wins: Paid, Rejected, Payment Pending,
// Stage 2 Pending, Stage 1 Pending. A rejection at stage 1 or 2 leaves the
// later stages' Pending fields untouched but still reports Rejected.
func Overall(record *entity.ExpenseRecord) entity.OverallStatus {
	switch {
	case record.Stage3.Status == entity.StagePaid:
		return entity.OverallPaid
	case record.Stage1.Status == entity.StageRejected,
		record.Stage2.Status == entity.StageRejected,
		record.Stage3.Status == entity.StageRejected:
		return entity.OverallRejected
	case record.Stage2.Status == entity.StageApproved:
		return entity.OverallPaymentPending
	case record.Stage1.Status == entity.StageApproved:
		return entity.OverallStage2Pending
	default:
		return entity.OverallStage1Pending
	}
}
