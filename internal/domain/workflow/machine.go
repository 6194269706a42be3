// Package workflow encodes the approval workflow contract as pure functions
// over an ExpenseRecord's stage states, independent of storage. Stages are
// strictly sequential: a stage only leaves Pending once the preceding stage
// is Approved, and a decided stage never changes again.
package workflow

import (
	"fmt"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
)

// stageTransitions is the per-stage transition table. Stages 1 and 2 move
// Pending -> Approved|Rejected; stage 3 moves Pending -> Paid|Rejected.
// There is no transition back to Pending.
var stageTransitions = map[entity.Stage]map[Decision]entity.StageStatus{
	entity.StageBrandHead: {
		DecisionApprove: entity.StageApproved,
		DecisionReject:  entity.StageRejected,
	},
	entity.StageSeniorManager: {
		DecisionApprove: entity.StageApproved,
		DecisionReject:  entity.StageRejected,
	},
	entity.StageAccounts: {
		DecisionPay:    entity.StagePaid,
		DecisionReject: entity.StageRejected,
	},
}

// PermittedDecisions returns the decisions the given stage supports
func PermittedDecisions(stage entity.Stage) []Decision {
	transitions, ok := stageTransitions[stage]
	if !ok {
		return nil
	}
	decisions := make([]Decision, 0, len(transitions))
	for d := range transitions {
		decisions = append(decisions, d)
	}
	return decisions
}

// NextStatus resolves the target status for a decision on a stage
func NextStatus(stage entity.Stage, decision Decision) (entity.StageStatus, error) {
	transitions, ok := stageTransitions[stage]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrInvalidStage, stage)
	}
	next, ok := transitions[decision]
	if !ok {
		return "", fmt.Errorf("%w: %s is not permitted at stage %d", ErrInvalidDecision, decision, stage)
	}
	return next, nil
}

// StageOpen reports whether the stage is currently eligible to be decided:
// the stage itself is Pending and every preceding stage is Approved
func StageOpen(record *entity.ExpenseRecord, stage entity.Stage) bool {
	if !stage.IsValid() {
		return false
	}
	if record.StageState(stage).Status != entity.StagePending {
		return false
	}
	for prev := stage.Prev(); prev.IsValid(); prev = prev.Prev() {
		if record.StageState(prev).Status != entity.StageApproved {
			return false
		}
	}
	return true
}

// CurrentStage returns the stage awaiting a decision, or 0 if the record
// is terminal (paid or rejected at some stage)
func CurrentStage(record *entity.ExpenseRecord) entity.Stage {
	for stage := entity.StageBrandHead; stage.IsValid(); stage++ {
		status := record.StageState(stage).Status
		if status == entity.StageRejected {
			return 0
		}
		if status == entity.StagePending {
			return stage
		}
	}
	return 0
}
