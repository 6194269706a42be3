package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tejasgroup/expenseflow/internal/domain/entity"
)

func identity(username string, role entity.Role) *entity.Identity {
	return &entity.Identity{Username: username, DisplayName: username, Role: role, Active: true}
}

func newTestRecord() *entity.ExpenseRecord {
	r := entity.NewExpenseRecord()
	r.ID = 1
	r.ExpenseDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	r.Brand = entity.BrandTejas
	r.Category = entity.CategoryMarketing
	r.Amount = decimal.RequireFromString("1500.00")
	r.SubmittedBy = "ravi"
	return r
}

func TestDecide_FullApprovalPath(t *testing.T) {
	r := newTestRecord()

	status, err := Decide(r, entity.StageBrandHead, identity("Swati", entity.RoleBrandHead), DecisionApprove, "ok", nil)
	if err != nil {
		t.Fatalf("stage 1 approve: %v", err)
	}
	if status != entity.OverallStage2Pending {
		t.Errorf("after stage 1: got %v, want %v", status, entity.OverallStage2Pending)
	}
	if r.Stage1.ActorUsername != "Swati" || r.Stage1.DecidedAt == nil {
		t.Errorf("stage 1 actor/timestamp not stamped: %+v", r.Stage1)
	}

	status, err = Decide(r, entity.StageSeniorManager, identity("Shruti", entity.RoleSeniorManager), DecisionApprove, "", nil)
	if err != nil {
		t.Fatalf("stage 2 approve: %v", err)
	}
	if status != entity.OverallPaymentPending {
		t.Errorf("after stage 2: got %v, want %v", status, entity.OverallPaymentPending)
	}

	status, err = Decide(r, entity.StageAccounts, identity("Hansi", entity.RoleAccounts), DecisionPay, "", &PaymentDetails{Mode: entity.PaymentModeUPI, TransactionRef: "TXN123"})
	if err != nil {
		t.Fatalf("stage 3 pay: %v", err)
	}
	if status != entity.OverallPaid {
		t.Errorf("after stage 3: got %v, want %v", status, entity.OverallPaid)
	}
	if r.Stage3.PaymentMode != entity.PaymentModeUPI || r.Stage3.TransactionRef != "TXN123" {
		t.Errorf("payment fields not stamped: %+v", r.Stage3)
	}
}

func TestDecide_RejectionTerminatesWorkflow(t *testing.T) {
	r := newTestRecord()

	status, err := Decide(r, entity.StageBrandHead, identity("Swati", entity.RoleBrandHead), DecisionReject, "duplicate", nil)
	if err != nil {
		t.Fatalf("stage 1 reject: %v", err)
	}
	if status != entity.OverallRejected {
		t.Errorf("after rejection: got %v, want %v", status, entity.OverallRejected)
	}
	// Later stages keep their own Pending fields but are unreachable.
	if r.Stage2.Status != entity.StagePending {
		t.Errorf("stage 2 status mutated by stage 1 rejection: %v", r.Stage2.Status)
	}

	_, err = Decide(r, entity.StageSeniorManager, identity("Shruti", entity.RoleSeniorManager), DecisionApprove, "", nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("acting after rejection: got %v, want ErrInvalidTransition", err)
	}
}

func TestDecide_Validation(t *testing.T) {
	brandHead := identity("Swati", entity.RoleBrandHead)
	seniorMgr := identity("Shruti", entity.RoleSeniorManager)
	accounts := identity("Hansi", entity.RoleAccounts)
	admin := identity("root", entity.RoleAdmin)
	staff := identity("ravi", entity.RoleStaff)
	inactive := identity("gone", entity.RoleBrandHead)
	inactive.Active = false

	approvedStage1 := func() *entity.ExpenseRecord {
		r := newTestRecord()
		r.Stage1.Status = entity.StageApproved
		return r
	}
	approvedStage2 := func() *entity.ExpenseRecord {
		r := approvedStage1()
		r.Stage2.Status = entity.StageApproved
		return r
	}

	tests := []struct {
		name     string
		record   *entity.ExpenseRecord
		stage    entity.Stage
		actor    *entity.Identity
		decision Decision
		remarks  string
		payment  *PaymentDetails
		wantErr  error
	}{
		{"reject without remarks", newTestRecord(), entity.StageBrandHead, brandHead, DecisionReject, "", nil, ErrMissingRemarks},
		{"reject with whitespace remarks", newTestRecord(), entity.StageBrandHead, brandHead, DecisionReject, "   ", nil, ErrMissingRemarks},
		{"stage 2 before stage 1", newTestRecord(), entity.StageSeniorManager, seniorMgr, DecisionApprove, "", nil, ErrInvalidTransition},
		{"stage 2 reject before stage 1", newTestRecord(), entity.StageSeniorManager, seniorMgr, DecisionReject, "x", nil, ErrInvalidTransition},
		{"wrong role for stage 1", newTestRecord(), entity.StageBrandHead, seniorMgr, DecisionApprove, "", nil, ErrNotEligible},
		{"staff cannot approve", newTestRecord(), entity.StageBrandHead, staff, DecisionApprove, "", nil, ErrNotEligible},
		{"inactive approver", newTestRecord(), entity.StageBrandHead, inactive, DecisionApprove, "", nil, ErrNotEligible},
		{"pay without payment details", approvedStage2(), entity.StageAccounts, accounts, DecisionPay, "", nil, ErrMissingPaymentFields},
		{"pay without transaction ref", approvedStage2(), entity.StageAccounts, accounts, DecisionPay, "", &PaymentDetails{Mode: entity.PaymentModeUPI}, ErrMissingPaymentFields},
		{"pay decision outside stage 3", approvedStage1(), entity.StageSeniorManager, seniorMgr, DecisionPay, "", nil, ErrInvalidDecision},
		{"approve decision at stage 3", approvedStage2(), entity.StageAccounts, accounts, DecisionApprove, "", nil, ErrInvalidDecision},
		{"invalid stage", newTestRecord(), entity.Stage(9), admin, DecisionApprove, "", nil, ErrInvalidStage},
		{"admin bypasses role check", newTestRecord(), entity.StageBrandHead, admin, DecisionApprove, "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decide(tt.record, tt.stage, tt.actor, tt.decision, tt.remarks, tt.payment)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Decide() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decide() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecide_ErrorLeavesRecordUntouched(t *testing.T) {
	r := newTestRecord()
	_, err := Decide(r, entity.StageBrandHead, identity("Swati", entity.RoleBrandHead), DecisionReject, "", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if r.Stage1.Status != entity.StagePending || r.Stage1.ActorUsername != "" || r.Stage1.DecidedAt != nil {
		t.Errorf("record mutated on error path: %+v", r.Stage1)
	}
}
