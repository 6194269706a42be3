package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
)

// PaymentDetails carries the stage 3 payout fields
type PaymentDetails struct {
	Mode           string
	TransactionRef string
}

// Decide validates and applies a decision to the given stage of the record.
// On success it stamps the stage's status, actor, timestamp and remarks
// (plus payment fields for stage 3) and returns the new overall status.
// The record is not modified on any error path.
func Decide(record *entity.ExpenseRecord, stage entity.Stage, actor *entity.Identity, decision Decision, remarks string, payment *PaymentDetails) (entity.OverallStatus, error) {
	if !stage.IsValid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidStage, stage)
	}

	next, err := NextStatus(stage, decision)
	if err != nil {
		return "", err
	}

	if !RoleCanAct(actor, stage, record) {
		return "", fmt.Errorf("%w: stage %d requires a different approver", ErrNotEligible, stage)
	}
	if !StageOpen(record, stage) {
		return "", fmt.Errorf("%w: stage %d is not awaiting a decision", ErrInvalidTransition, stage)
	}

	if decision.IsRejection() && strings.TrimSpace(remarks) == "" {
		return "", ErrMissingRemarks
	}

	if decision == DecisionPay {
		if payment == nil || strings.TrimSpace(payment.Mode) == "" || strings.TrimSpace(payment.TransactionRef) == "" {
			return "", ErrMissingPaymentFields
		}
	}

	now := time.Now()
	state := record.StageState(stage)
	state.Status = next
	state.ActorUsername = actor.Username
	state.DecidedAt = &now
	state.Remarks = remarks
	if decision == DecisionPay {
		state.PaymentMode = payment.Mode
		state.TransactionRef = payment.TransactionRef
	}

	return Overall(record), nil
}
