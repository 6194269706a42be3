package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
	"github.com/tejasgroup/expenseflow/internal/domain/workflow"
	"github.com/tejasgroup/expenseflow/internal/repository"
)

// ExpenseStore is the expense persistence surface the service needs
type ExpenseStore interface {
	Create(record *entity.ExpenseRecord) error
	GetByID(id int64) (*entity.ExpenseRecord, error)
	List(filter repository.Filter) ([]*entity.ExpenseRecord, error)
	DecideStage(id int64, stage entity.Stage, state entity.StageState) error
	Delete(id int64) error
}

// IdentityReader resolves usernames for eligibility checks
type IdentityReader interface {
	GetByUsername(username string) (*entity.Identity, error)
}

// CreateExpenseInput carries the fields of a new expense claim
type CreateExpenseInput struct {
	ExpenseDate time.Time
	Brand       string
	Category    string
	Subcategory string
	Amount      decimal.Decimal
	Description string
	SubmittedBy string
	AssignedTo  string
}

// DecideInput carries one stage decision
type DecideInput struct {
	ExpenseID      int64
	Stage          entity.Stage
	Actor          string
	Decision       workflow.Decision
	Remarks        string
	PaymentMode    string
	TransactionRef string
}

// ExpenseService drives expense claims through the approval workflow
type ExpenseService struct {
	expenses   ExpenseStore
	identities IdentityReader
	logger     *zap.Logger
}

// NewExpenseService creates a new expense service
func NewExpenseService(expenses ExpenseStore, identities IdentityReader, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenses:   expenses,
		identities: identities,
		logger:     logger,
	}
}

// Create validates and stores a new expense claim.
// All three stages start Pending; the overall status is Stage 1 Pending.
func (s *ExpenseService) Create(input CreateExpenseInput) (*entity.ExpenseRecord, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	record := entity.NewExpenseRecord()
	record.ExpenseDate = input.ExpenseDate
	record.Brand = input.Brand
	record.Category = input.Category
	record.Subcategory = input.Subcategory
	record.Amount = input.Amount
	record.Description = input.Description
	record.SubmittedBy = input.SubmittedBy
	record.AssignedTo = input.AssignedTo

	if err := s.expenses.Create(record); err != nil {
		s.logger.Error("Failed to create expense", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Expense created",
		zap.Int64("id", record.ID),
		zap.String("brand", record.Brand),
		zap.String("amount", record.Amount.StringFixed(2)),
		zap.String("submitted_by", record.SubmittedBy))
	return record, nil
}

func (s *ExpenseService) validateCreate(input CreateExpenseInput) error {
	if input.ExpenseDate.IsZero() {
		return fmt.Errorf("%w: expense date is required", ErrValidation)
	}
	if !entity.IsValidBrand(input.Brand) {
		return fmt.Errorf("%w: unknown brand %q", ErrValidation, input.Brand)
	}
	if !entity.IsValidCategory(input.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, input.Category)
	}
	if !entity.IsValidSubcategory(input.Category, input.Subcategory) {
		return fmt.Errorf("%w: subcategory %q not valid for category %q", ErrValidation, input.Subcategory, input.Category)
	}
	if !input.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	if strings.TrimSpace(input.SubmittedBy) == "" {
		return fmt.Errorf("%w: submitter is required", ErrValidation)
	}
	if input.AssignedTo != "" {
		assignee, err := s.identities.GetByUsername(input.AssignedTo)
		if err != nil {
			return fmt.Errorf("%w: assignee %q not found", ErrValidation, input.AssignedTo)
		}
		if assignee.Role != entity.RoleBrandHead || !assignee.Active {
			return fmt.Errorf("%w: assignee %q is not an active brand head", ErrValidation, input.AssignedTo)
		}
	}
	return nil
}

// Get retrieves one expense record by ID
func (s *ExpenseService) Get(id int64) (*entity.ExpenseRecord, error) {
	return s.expenses.GetByID(id)
}

// List retrieves expense records matching the filter
func (s *ExpenseService) List(filter repository.Filter) ([]*entity.ExpenseRecord, error) {
	return s.expenses.List(filter)
}

// Decide applies one stage decision on behalf of the named actor.
// The workflow rules run in memory first; the write itself is a
// compare-and-swap, so a concurrent decision on the same stage makes
// exactly one caller win and the other fail with an invalid transition.
func (s *ExpenseService) Decide(input DecideInput) (*entity.ExpenseRecord, entity.OverallStatus, error) {
	actor, err := s.identities.GetByUsername(input.Actor)
	if err != nil {
		return nil, "", fmt.Errorf("%w: unknown actor", workflow.ErrNotEligible)
	}

	record, err := s.expenses.GetByID(input.ExpenseID)
	if err != nil {
		return nil, "", err
	}

	var payment *workflow.PaymentDetails
	if input.Decision == workflow.DecisionPay {
		payment = &workflow.PaymentDetails{
			Mode:           input.PaymentMode,
			TransactionRef: input.TransactionRef,
		}
		if payment.Mode != "" && !entity.IsValidPaymentMode(payment.Mode) {
			return nil, "", fmt.Errorf("%w: unknown payment mode %q", ErrValidation, payment.Mode)
		}
	}

	overall, err := workflow.Decide(record, input.Stage, actor, input.Decision, input.Remarks, payment)
	if err != nil {
		return nil, "", err
	}

	if err := s.expenses.DecideStage(input.ExpenseID, input.Stage, *record.StageState(input.Stage)); err != nil {
		return nil, "", err
	}

	s.logger.Info("Stage decided",
		zap.Int64("id", input.ExpenseID),
		zap.Int("stage", int(input.Stage)),
		zap.String("decision", input.Decision.String()),
		zap.String("actor", actor.Username),
		zap.String("overall", overall.String()))
	return record, overall, nil
}

// ListPendingFor returns the queue of records awaiting the actor's stage,
// oldest first. Brand heads only see unassigned records plus their own
// assignments; Admin sees every open queue.
func (s *ExpenseService) ListPendingFor(actorUsername string) ([]*entity.ExpenseRecord, error) {
	actor, err := s.identities.GetByUsername(actorUsername)
	if err != nil {
		return nil, err
	}

	if actor.Role == entity.RoleAdmin {
		return s.listOpenForStages(actor,
			entity.StageBrandHead, entity.StageSeniorManager, entity.StageAccounts)
	}

	stage := workflow.StageForRole(actor.Role)
	if stage == 0 {
		return nil, nil
	}
	return s.listOpenForStages(actor, stage)
}

func (s *ExpenseService) listOpenForStages(actor *entity.Identity, stages ...entity.Stage) ([]*entity.ExpenseRecord, error) {
	var queue []*entity.ExpenseRecord
	for _, stage := range stages {
		records, err := s.expenses.List(repository.Filter{
			Overall:     overallForStage(stage),
			OldestFirst: true,
		})
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if workflow.RoleCanAct(actor, stage, record) {
				queue = append(queue, record)
			}
		}
	}
	return queue, nil
}

func overallForStage(stage entity.Stage) entity.OverallStatus {
	switch stage {
	case entity.StageBrandHead:
		return entity.OverallStage1Pending
	case entity.StageSeniorManager:
		return entity.OverallStage2Pending
	default:
		return entity.OverallPaymentPending
	}
}

// Delete removes a record as an administrative override.
// Only Admin may delete; the workflow itself never deletes records.
func (s *ExpenseService) Delete(id int64, actorUsername string) error {
	actor, err := s.identities.GetByUsername(actorUsername)
	if err != nil {
		return fmt.Errorf("%w: unknown actor", workflow.ErrNotEligible)
	}
	if actor.Role != entity.RoleAdmin || !actor.Active {
		return fmt.Errorf("%w: delete is an admin override", workflow.ErrNotEligible)
	}

	if err := s.expenses.Delete(id); err != nil {
		return err
	}
	s.logger.Warn("Expense deleted by admin override",
		zap.Int64("id", id),
		zap.String("actor", actor.Username))
	return nil
}
