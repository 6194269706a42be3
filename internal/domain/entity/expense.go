package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage identifies one of the three sequential approval gates
type Stage int

const (
	StageBrandHead     Stage = 1
	StageSeniorManager Stage = 2
	StageAccounts      Stage = 3
)

// IsValid returns true if the stage is one of the three defined gates
func (s Stage) IsValid() bool {
	return s >= StageBrandHead && s <= StageAccounts
}

// Prev returns the preceding stage (StageBrandHead has no predecessor)
func (s Stage) Prev() Stage {
	return s - 1
}

// String returns the human-readable stage name
func (s Stage) String() string {
	switch s {
	case StageBrandHead:
		return "Brand Head"
	case StageSeniorManager:
		return "Senior Manager"
	case StageAccounts:
		return "Accounts"
	default:
		return "Unknown"
	}
}

// StageStatus is the per-stage workflow status
type StageStatus string

const (
	StagePending  StageStatus = "Pending"
	StageApproved StageStatus = "Approved"
	StageRejected StageStatus = "Rejected"
	StagePaid     StageStatus = "Paid"
)

var validStageStatuses = map[StageStatus]bool{
	StagePending:  true,
	StageApproved: true,
	StageRejected: true,
	StagePaid:     true,
}

// IsValid returns true if the status is a defined stage status
func (s StageStatus) IsValid() bool {
	return validStageStatuses[s]
}

// IsTerminal returns true once the stage has been decided; a decided stage
// never changes again
func (s StageStatus) IsTerminal() bool {
	return s != StagePending
}

// String returns the string representation of the status
func (s StageStatus) String() string {
	return string(s)
}

// OverallStatus is the derived position of a record in the workflow.
// It is never persisted; it is recomputed from the three stage statuses.
type OverallStatus string

const (
	OverallStage1Pending   OverallStatus = "Stage 1 Pending"
	OverallStage2Pending   OverallStatus = "Stage 2 Pending"
	OverallPaymentPending  OverallStatus = "Payment Pending"
	OverallPaid            OverallStatus = "Paid"
	OverallRejected        OverallStatus = "Rejected"
)

// OverallStatuses lists all derived statuses, used for filter validation
var OverallStatuses = []OverallStatus{
	OverallStage1Pending,
	OverallStage2Pending,
	OverallPaymentPending,
	OverallPaid,
	OverallRejected,
}

// IsValid returns true if the status is a defined overall status
func (s OverallStatus) IsValid() bool {
	for _, status := range OverallStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// String returns the string representation of the overall status
func (s OverallStatus) String() string {
	return string(s)
}

// StageState holds the decision record for a single approval stage
type StageState struct {
	Status         StageStatus `json:"status"`
	ActorUsername  string      `json:"actor_username,omitempty"`
	DecidedAt      *time.Time  `json:"decided_at,omitempty"`
	Remarks        string      `json:"remarks,omitempty"`
	PaymentMode    string      `json:"payment_mode,omitempty"`
	TransactionRef string      `json:"transaction_ref,omitempty"`
}

// ExpenseRecord is one expense claim and its three-stage approval sub-state
type ExpenseRecord struct {
	ID          int64           `json:"id"`
	ExpenseDate time.Time       `json:"expense_date"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	SubmittedBy string          `json:"submitted_by"`
	AssignedTo  string          `json:"assigned_to,omitempty"`
	Stage1      StageState      `json:"stage1"`
	Stage2      StageState      `json:"stage2"`
	Stage3      StageState      `json:"stage3"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewExpenseRecord returns a record with all three stages Pending
func NewExpenseRecord() *ExpenseRecord {
	return &ExpenseRecord{
		Stage1: StageState{Status: StagePending},
		Stage2: StageState{Status: StagePending},
		Stage3: StageState{Status: StagePending},
	}
}

// StageState returns a pointer to the sub-record for the given stage,
// or nil for an invalid stage
func (r *ExpenseRecord) StageState(stage Stage) *StageState {
	switch stage {
	case StageBrandHead:
		return &r.Stage1
	case StageSeniorManager:
		return &r.Stage2
	case StageAccounts:
		return &r.Stage3
	default:
		return nil
	}
}
