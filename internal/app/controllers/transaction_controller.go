package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/app/services"
	"github.com/campuspay/studentbank/internal/middleware"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
)

// TransactionController handles ledger operations
type TransactionController struct {
	ledgerService services.LedgerService
}

// NewTransactionController creates a TransactionController
func NewTransactionController(ledgerService services.LedgerService) *TransactionController {
	return &TransactionController{ledgerService: ledgerService}
}

// Apply records a deposit or withdrawal for the student in the path
func (tc *TransactionController) Apply(c *gin.Context) {
	studentID, ok := StudentIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid student id"))
		return
	}

	var req dto.ApplyTransactionRequest
	if err := bindStrictJSON(c, &req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := tc.ledgerService.Apply(c.Request.Context(), studentID, req, recordedBy(c))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAPIResponse(resp))
}

// History returns the student's ledger with the current balance
func (tc *TransactionController) History(c *gin.Context) {
	studentID, ok := StudentIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid student id"))
		return
	}

	resp, err := tc.ledgerService.History(c.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Get returns a single ledger entry addressed by its id
func (tc *TransactionController) Get(c *gin.Context) {
	id, ok := transactionIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid transaction id"))
		return
	}

	resp, err := tc.ledgerService.Get(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Update edits a ledger entry addressed by its id
func (tc *TransactionController) Update(c *gin.Context) {
	id, ok := transactionIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid transaction id"))
		return
	}

	var req dto.UpdateTransactionRequest
	if err := bindStrictJSON(c, &req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := tc.ledgerService.Update(c.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Delete removes a ledger entry, reversing its effect on the balance
func (tc *TransactionController) Delete(c *gin.Context) {
	id, ok := transactionIDParam(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid transaction id"))
		return
	}

	if err := tc.ledgerService.Delete(c.Request.Context(), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Transaction deleted"))
}

// BulkApply records a batch of ledger entries addressed by student code
func (tc *TransactionController) BulkApply(c *gin.Context) {
	var req dto.BulkTransactionRequest
	if err := bindStrictJSON(c, &req); err != nil {
		bindError(c, err)
		return
	}

	result, err := tc.ledgerService.BulkApply(c.Request.Context(), req, recordedBy(c))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(result))
}

// DepositAudit returns the most recent deposit audit records
func (tc *TransactionController) DepositAudit(c *gin.Context) {
	entries, err := tc.ledgerService.DepositAudit(c.Request.Context(), auditLimit(c))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(entries))
}

// WithdrawalAudit returns the most recent withdrawal audit records
func (tc *TransactionController) WithdrawalAudit(c *gin.Context) {
	entries, err := tc.ledgerService.WithdrawalAudit(c.Request.Context(), auditLimit(c))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(entries))
}

// auditLimit reads the optional limit query parameter, capped server-side
func auditLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		return 100
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func transactionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("txID"))
	return id, err == nil
}

// recordedBy names the staff member performing the operation for the audit trail
func recordedBy(c *gin.Context) string {
	if user, ok := c.Get(middleware.ContextUser); ok {
		if u, ok := user.(*dto.SessionUser); ok {
			return u.Username
		}
	}
	return ""
}
