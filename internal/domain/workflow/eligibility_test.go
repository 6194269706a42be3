package workflow

import (
	"testing"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
)

func TestRoleCanAct_AssigneeRestriction(t *testing.T) {
	assigned := newTestRecord()
	assigned.AssignedTo = "Swati"

	unassigned := newTestRecord()

	tests := []struct {
		name     string
		actor    *entity.Identity
		stage    entity.Stage
		record   *entity.ExpenseRecord
		expected bool
	}{
		{"assigned approver may act", identity("Swati", entity.RoleBrandHead), entity.StageBrandHead, assigned, true},
		{"other brand head blocked by assignment", identity("Meera", entity.RoleBrandHead), entity.StageBrandHead, assigned, false},
		{"admin bypasses assignment", identity("root", entity.RoleAdmin), entity.StageBrandHead, assigned, true},
		{"any brand head when unassigned", identity("Meera", entity.RoleBrandHead), entity.StageBrandHead, unassigned, true},
		{"assignment does not gate stage 2", identity("Shruti", entity.RoleSeniorManager), entity.StageSeniorManager, assigned, true},
		{"nil actor", nil, entity.StageBrandHead, unassigned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleCanAct(tt.actor, tt.stage, tt.record); got != tt.expected {
				t.Errorf("RoleCanAct() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStageForRole(t *testing.T) {
	tests := []struct {
		role     entity.Role
		expected entity.Stage
	}{
		{entity.RoleBrandHead, entity.StageBrandHead},
		{entity.RoleSeniorManager, entity.StageSeniorManager},
		{entity.RoleAccounts, entity.StageAccounts},
		{entity.RoleStaff, 0},
		{entity.RoleAdmin, 0},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			if got := StageForRole(tt.role); got != tt.expected {
				t.Errorf("StageForRole(%s) = %v, want %v", tt.role, got, tt.expected)
			}
		})
	}
}

func TestPermittedDecisions(t *testing.T) {
	for _, stage := range []entity.Stage{entity.StageBrandHead, entity.StageSeniorManager} {
		decisions := PermittedDecisions(stage)
		if len(decisions) != 2 {
			t.Errorf("stage %d: got %d decisions, want 2", stage, len(decisions))
		}
		if _, err := NextStatus(stage, DecisionPay); err == nil {
			t.Errorf("stage %d must not permit PAY", stage)
		}
	}

	if _, err := NextStatus(entity.StageAccounts, DecisionApprove); err == nil {
		t.Error("stage 3 must not permit APPROVE")
	}
	if next, err := NextStatus(entity.StageAccounts, DecisionPay); err != nil || next != entity.StagePaid {
		t.Errorf("stage 3 PAY: got (%v, %v), want (Paid, nil)", next, err)
	}
}
