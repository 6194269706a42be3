package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
	"github.com/tejasgroup/expenseflow/internal/domain/workflow"
	"github.com/tejasgroup/expenseflow/internal/repository"
	"github.com/tejasgroup/expenseflow/internal/service"
)

const dateLayout = "2006-01-02"

// Handlers contains all HTTP request handlers
type Handlers struct {
	expenses   *service.ExpenseService
	identities *service.IdentityService
	reports    *service.ReportService
	tokens     *TokenIssuer
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	expenses *service.ExpenseService,
	identities *service.IdentityService,
	reports *service.ReportService,
	tokens *TokenIssuer,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		expenses:   expenses,
		identities: identities,
		reports:    reports,
		tokens:     tokens,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// LoginRequest carries a credential pair
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Secret   string `json:"secret" binding:"required"`
}

// LoginResponse carries the signed token and the account it names
type LoginResponse struct {
	Token       string `json:"token"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// CreateExpenseRequest carries a new expense claim
type CreateExpenseRequest struct {
	ExpenseDate string `json:"expense_date" binding:"required"`
	Brand       string `json:"brand" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Subcategory string `json:"subcategory"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to"`
}

// DecisionRequest carries one stage decision
type DecisionRequest struct {
	Decision       string `json:"decision" binding:"required"`
	Remarks        string `json:"remarks"`
	PaymentMode    string `json:"payment_mode"`
	TransactionRef string `json:"transaction_ref"`
}

// CreateIdentityRequest carries a new directory account
type CreateIdentityRequest struct {
	Username    string `json:"username" binding:"required"`
	Secret      string `json:"secret" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Role        string `json:"role" binding:"required"`
}

// SetActiveRequest toggles an account's active flag
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// RotateSecretRequest replaces an account's secret
type RotateSecretRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// StageResponse represents one approval stage in API responses
type StageResponse struct {
	Status         string  `json:"status"`
	Actor          string  `json:"actor,omitempty"`
	DecidedAt      *string `json:"decided_at,omitempty"`
	Remarks        string  `json:"remarks,omitempty"`
	PaymentMode    string  `json:"payment_mode,omitempty"`
	TransactionRef string  `json:"transaction_ref,omitempty"`
}

// ExpenseResponse represents an expense record in API responses
type ExpenseResponse struct {
	ID            int64         `json:"id"`
	ExpenseDate   string        `json:"expense_date"`
	Brand         string        `json:"brand"`
	Category      string        `json:"category"`
	Subcategory   string        `json:"subcategory,omitempty"`
	Amount        string        `json:"amount"`
	Description   string        `json:"description,omitempty"`
	SubmittedBy   string        `json:"submitted_by"`
	AssignedTo    string        `json:"assigned_to,omitempty"`
	OverallStatus string        `json:"overall_status"`
	Stage1        StageResponse `json:"stage1"`
	Stage2        StageResponse `json:"stage2"`
	Stage3        StageResponse `json:"stage3"`
	CreatedAt     string        `json:"created_at"`
}

func toStageResponse(state entity.StageState) StageResponse {
	resp := StageResponse{
		Status:         state.Status.String(),
		Actor:          state.ActorUsername,
		Remarks:        state.Remarks,
		PaymentMode:    state.PaymentMode,
		TransactionRef: state.TransactionRef,
	}
	if state.DecidedAt != nil {
		decided := state.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &decided
	}
	return resp
}

func toExpenseResponse(record *entity.ExpenseRecord) ExpenseResponse {
	return ExpenseResponse{
		ID:            record.ID,
		ExpenseDate:   record.ExpenseDate.Format(dateLayout),
		Brand:         record.Brand,
		Category:      record.Category,
		Subcategory:   record.Subcategory,
		Amount:        record.Amount.StringFixed(2),
		Description:   record.Description,
		SubmittedBy:   record.SubmittedBy,
		AssignedTo:    record.AssignedTo,
		OverallStatus: workflow.Overall(record).String(),
		Stage1:        toStageResponse(record.Stage1),
		Stage2:        toStageResponse(record.Stage2),
		Stage3:        toStageResponse(record.Stage3),
		CreatedAt:     record.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toExpenseResponses(records []*entity.ExpenseRecord) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toExpenseResponse(record))
	}
	return out
}

// statusForError maps domain errors onto HTTP status codes
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrAuthFailed):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, workflow.ErrNotEligible):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, repository.ErrDuplicateUsername):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, workflow.ErrMissingRemarks),
		errors.Is(err, workflow.ErrMissingPaymentFields),
		errors.Is(err, workflow.ErrInvalidStage),
		errors.Is(err, workflow.ErrInvalidDecision):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, Response{Success: false, Error: message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: message})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Login handles POST /api/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and secret are required")
		return
	}

	identity, err := h.identities.Authenticate(req.Username, req.Secret)
	if err != nil {
		h.fail(c, err)
		return
	}

	token, err := h.tokens.Issue(identity)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: LoginResponse{
			Token:       token,
			Username:    identity.Username,
			DisplayName: identity.DisplayName,
			Role:        identity.Role.String(),
		},
	})
}

// CreateExpense handles POST /api/expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	expenseDate, err := time.Parse(dateLayout, req.ExpenseDate)
	if err != nil {
		badRequest(c, "expense_date must be formatted as YYYY-MM-DD")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		badRequest(c, "amount must be a decimal number")
		return
	}

	record, err := h.expenses.Create(service.CreateExpenseInput{
		ExpenseDate: expenseDate,
		Brand:       req.Brand,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Amount:      amount,
		Description: req.Description,
		SubmittedBy: actorFrom(c).Username,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toExpenseResponse(record)})
}

// ListExpenses handles GET /api/expenses
func (h *Handlers) ListExpenses(c *gin.Context) {
	status := entity.OverallStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		badRequest(c, "unknown status "+strconv.Quote(status.String()))
		return
	}

	filter := repository.Filter{
		Brand:       c.Query("brand"),
		Category:    c.Query("category"),
		SubmittedBy: c.Query("submitted_by"),
		AssignedTo:  c.Query("assigned_to"),
		Overall:     status,
	}
	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(dateLayout, from)
		if err != nil {
			badRequest(c, "from must be formatted as YYYY-MM-DD")
			return
		}
		filter.DateFrom = &parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse(dateLayout, to)
		if err != nil {
			badRequest(c, "to must be formatted as YYYY-MM-DD")
			return
		}
		filter.DateTo = &parsed
	}

	records, err := h.expenses.List(filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toExpenseResponses(records)})
}

// GetExpense handles GET /api/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid expense ID")
		return
	}

	record, err := h.expenses.Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toExpenseResponse(record)})
}

// DeleteExpense handles DELETE /api/expenses/:id
func (h *Handlers) DeleteExpense(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid expense ID")
		return
	}

	if err := h.expenses.Delete(id, actorFrom(c).Username); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ListPending handles GET /api/expenses/pending
func (h *Handlers) ListPending(c *gin.Context) {
	records, err := h.expenses.ListPendingFor(actorFrom(c).Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toExpenseResponses(records)})
}

// DecideStage handles POST /api/expenses/:id/stages/:stage/decision
func (h *Handlers) DecideStage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid expense ID")
		return
	}
	stageNum, err := strconv.Atoi(c.Param("stage"))
	if err != nil || !entity.Stage(stageNum).IsValid() {
		badRequest(c, "stage must be 1, 2 or 3")
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	record, overall, err := h.expenses.Decide(service.DecideInput{
		ExpenseID:      id,
		Stage:          entity.Stage(stageNum),
		Actor:          actorFrom(c).Username,
		Decision:       workflow.Decision(req.Decision),
		Remarks:        req.Remarks,
		PaymentMode:    req.PaymentMode,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("Decision applied",
		zap.Int64("expense_id", id),
		zap.Int("stage", stageNum),
		zap.String("overall", overall.String()))
	c.JSON(http.StatusOK, Response{Success: true, Data: toExpenseResponse(record)})
}

// SummaryRowResponse represents one aggregation row in API responses
type SummaryRowResponse struct {
	Key              string `json:"key"`
	TotalAmount      string `json:"total_amount"`
	TransactionCount int    `json:"transaction_count"`
}

func toSummaryResponses(rows []service.SummaryRow) []SummaryRowResponse {
	out := make([]SummaryRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, SummaryRowResponse{
			Key:              row.Key,
			TotalAmount:      row.TotalAmount.StringFixed(2),
			TransactionCount: row.TransactionCount,
		})
	}
	return out
}

// BrandReport handles GET /api/reports/brands
func (h *Handlers) BrandReport(c *gin.Context) {
	status := entity.OverallStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		badRequest(c, "unknown status "+strconv.Quote(status.String()))
		return
	}

	rows, err := h.reports.BrandSummary(status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toSummaryResponses(rows)})
}

// CategoryReport handles GET /api/reports/categories
func (h *Handlers) CategoryReport(c *gin.Context) {
	rows, err := h.reports.CategorySummary()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toSummaryResponses(rows)})
}

// MonthReport handles GET /api/reports/months
func (h *Handlers) MonthReport(c *gin.Context) {
	rows, err := h.reports.MonthSummary()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toSummaryResponses(rows)})
}

// MatrixReportResponse represents the brand-by-month grid in API responses
type MatrixReportResponse struct {
	Months []string            `json:"months"`
	Rows   []MatrixRowResponse `json:"rows"`
}

// MatrixRowResponse represents one brand row of the grid
type MatrixRowResponse struct {
	Brand    string   `json:"brand"`
	Cells    []string `json:"cells"`
	RowTotal string   `json:"row_total"`
}

// MatrixReport handles GET /api/reports/brand-month-matrix
func (h *Handlers) MatrixReport(c *gin.Context) {
	matrix, err := h.reports.Matrix()
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := MatrixReportResponse{Months: matrix.Months}
	for _, row := range matrix.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, cell.StringFixed(2))
		}
		resp.Rows = append(resp.Rows, MatrixRowResponse{
			Brand:    row.Brand,
			Cells:    cells,
			RowTotal: row.RowTotal.StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// IdentityResponse represents a directory account in API responses
type IdentityResponse struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
}

func toIdentityResponse(identity *entity.Identity) IdentityResponse {
	return IdentityResponse{
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		Role:        identity.Role.String(),
		Active:      identity.Active,
	}
}

// CreateIdentity handles POST /api/identities
func (h *Handlers) CreateIdentity(c *gin.Context) {
	var req CreateIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	identity, err := h.identities.Create(service.CreateIdentityInput{
		Username:    req.Username,
		Secret:      req.Secret,
		DisplayName: req.DisplayName,
		Role:        entity.Role(req.Role),
		CreatedBy:   actorFrom(c).Username,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: toIdentityResponse(identity)})
}

// ListIdentities handles GET /api/identities?role=
func (h *Handlers) ListIdentities(c *gin.Context) {
	identities, err := h.identities.ListByRole(entity.Role(c.Query("role")))
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]IdentityResponse, 0, len(identities))
	for _, identity := range identities {
		out = append(out, toIdentityResponse(identity))
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: out})
}

// SetIdentityActive handles PATCH /api/identities/:username/active
func (h *Handlers) SetIdentityActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "active flag is required")
		return
	}

	if err := h.identities.SetActive(c.Param("username"), *req.Active); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// RotateIdentitySecret handles POST /api/identities/:username/secret
func (h *Handlers) RotateIdentitySecret(c *gin.Context) {
	var req RotateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "secret is required")
		return
	}

	if err := h.identities.RotateSecret(c.Param("username"), req.Secret); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}
