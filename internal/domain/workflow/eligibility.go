package workflow

import "github.com/tejasgroup/expenseflow/internal/domain/entity"

// approverRoles maps each stage to the role that decides it. Admin is an
// unconditional bypass for every stage and is handled separately.
var approverRoles = map[entity.Stage]entity.Role{
	entity.StageBrandHead:     entity.RoleBrandHead,
	entity.StageSeniorManager: entity.RoleSeniorManager,
	entity.StageAccounts:      entity.RoleAccounts,
}

// ApproverRole returns the role responsible for deciding the given stage
func ApproverRole(stage entity.Stage) (entity.Role, bool) {
	role, ok := approverRoles[stage]
	return role, ok
}

// StageForRole returns the stage the role decides, or 0 for roles that
// decide no stage (Staff, Admin)
func StageForRole(role entity.Role) entity.Stage {
	for stage, r := range approverRoles {
		if r == role {
			return stage
		}
	}
	return 0
}

// RoleCanAct reports whether the actor's role permits acting on the stage
// of this record. Stage 1 additionally restricts to the assigned approver
// when the record has one; Admin bypasses both checks.
func RoleCanAct(actor *entity.Identity, stage entity.Stage, record *entity.ExpenseRecord) bool {
	if actor == nil || !actor.Active {
		return false
	}
	if actor.Role == entity.RoleAdmin {
		return true
	}
	required, ok := approverRoles[stage]
	if !ok || actor.Role != required {
		return false
	}
	if stage == entity.StageBrandHead && record.AssignedTo != "" && record.AssignedTo != actor.Username {
		return false
	}
	return true
}

// CanAct reports whether the actor may decide the stage of this record
// right now: the role check above plus the stage being open
func CanAct(actor *entity.Identity, stage entity.Stage, record *entity.ExpenseRecord) bool {
	return RoleCanAct(actor, stage, record) && StageOpen(record, stage)
}
