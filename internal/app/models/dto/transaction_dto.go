package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campuspay/studentbank/internal/app/models"
)

// ApplyTransactionRequest records a deposit or withdrawal for a student
type ApplyTransactionRequest struct {
	Type       string          `json:"type" binding:"required,oneof=deposit withdraw"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Reason     string          `json:"reason" binding:"max=256"`
	OccurredOn string          `json:"date" binding:"required,datetime=2006-01-02"`
}

// UpdateTransactionRequest edits an existing ledger entry
type UpdateTransactionRequest struct {
	Type       *string          `json:"type" binding:"omitempty,oneof=deposit withdraw"`
	Amount     *decimal.Decimal `json:"amount"`
	Reason     *string          `json:"reason" binding:"omitempty,max=256"`
	OccurredOn *string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// BulkTransactionEntry is one ledger entry inside a bulk request,
// addressing the student by their unique code.
type BulkTransactionEntry struct {
	StudentCode string          `json:"studentCode" binding:"required"`
	Type        string          `json:"type" binding:"required,oneof=deposit withdraw"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Reason      string          `json:"reason" binding:"max=256"`
	OccurredOn  string          `json:"date" binding:"required,datetime=2006-01-02"`
}

// BulkTransactionRequest records many ledger entries in one call
type BulkTransactionRequest struct {
	Entries []BulkTransactionEntry `json:"entries" binding:"required,min=1,dive"`
}

// BulkTransactionError reports a single failed entry in a bulk request
type BulkTransactionError struct {
	StudentCode string `json:"studentCode"`
	Message     string `json:"message"`
}

// BulkTransactionResult summarizes a bulk request; failures do not roll back
// the entries that succeeded.
type BulkTransactionResult struct {
	SuccessCount int                    `json:"successCount"`
	FailureCount int                    `json:"failureCount"`
	Errors       []BulkTransactionError `json:"errors,omitempty"`
}

// TransactionResponse is the public representation of a ledger entry
type TransactionResponse struct {
	ID         uuid.UUID       `json:"id"`
	StudentID  int64           `json:"studentId"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason,omitempty"`
	OccurredOn string          `json:"date"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// TransactionHistoryResponse is a student's ledger with the current balance
type TransactionHistoryResponse struct {
	StudentID    int64                 `json:"studentId"`
	Balance      decimal.Decimal       `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

// AuditEntryResponse is one record of the append-only deposit or withdrawal
// trail, carrying the student snapshot taken when the entry was recorded
type AuditEntryResponse struct {
	ID            int64           `json:"id"`
	TransactionID uuid.UUID       `json:"transactionId"`
	StudentID     int64           `json:"studentId"`
	StudentCode   string          `json:"studentCode"`
	StudentName   string          `json:"studentName"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason,omitempty"`
	OccurredOn    string          `json:"date"`
	RecordedBy    string          `json:"recordedBy,omitempty"`
	RecordedAt    time.Time       `json:"recordedAt"`
}

// ToAuditEntryResponse converts an audit record to its public representation
func ToAuditEntryResponse(e *models.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		StudentID:     e.StudentID,
		StudentCode:   e.StudentCode,
		StudentName:   e.StudentName,
		Amount:        e.Amount,
		Reason:        e.Reason,
		OccurredOn:    e.OccurredOn.Format("2006-01-02"),
		RecordedBy:    e.RecordedBy,
		RecordedAt:    e.RecordedAt,
	}
}

// ToTransactionResponse converts a model to its public representation
func ToTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:         t.ID,
		StudentID:  t.StudentID,
		Type:       string(t.Type),
		Amount:     t.Amount,
		Reason:     t.Reason,
		OccurredOn: t.OccurredOn.Format("2006-01-02"),
		CreatedAt:  t.CreatedAt,
	}
}
