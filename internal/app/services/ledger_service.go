package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
	"github.com/campuspay/studentbank/internal/pkg/metrics"
)

const dateLayout = "2006-01-02"

// ledgerStore performs the atomic balance-mutating operations
type ledgerStore interface {
	Apply(ctx context.Context, entry *models.Transaction, recordedBy string) (*models.Transaction, *models.Student, error)
	Update(ctx context.Context, id uuid.UUID, mutate func(*models.Transaction) error) (*models.Transaction, *models.Student, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Transaction, *models.Student, error)
}

// transactionReader reads the ledger
type transactionReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Transaction, error)
}

// auditReader reads the append-only deposit and withdrawal trails
type auditReader interface {
	ListDeposits(ctx context.Context, limit int) ([]*models.AuditEntry, error)
	ListWithdrawals(ctx context.Context, limit int) ([]*models.AuditEntry, error)
}

// studentReader loads students by primary key or code
type studentReader interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByCode(ctx context.Context, code string) (*models.Student, error)
}

// LedgerService records deposits and withdrawals against student balances
type LedgerService interface {
	Apply(ctx context.Context, studentID int64, req dto.ApplyTransactionRequest, recordedBy string) (*dto.TransactionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateTransactionRequest) (*dto.TransactionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkApply(ctx context.Context, req dto.BulkTransactionRequest, recordedBy string) (*dto.BulkTransactionResult, error)
	History(ctx context.Context, studentID int64) (*dto.TransactionHistoryResponse, error)
	DepositAudit(ctx context.Context, limit int) ([]dto.AuditEntryResponse, error)
	WithdrawalAudit(ctx context.Context, limit int) ([]dto.AuditEntryResponse, error)
}

type ledgerService struct {
	ledger       ledgerStore
	transactions transactionReader
	students     studentReader
	audit        auditReader
	notifier     Notifier
}

// NewLedgerService creates a LedgerService
func NewLedgerService(ledger ledgerStore, transactions transactionReader, students studentReader, audit auditReader, notifier Notifier) LedgerService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &ledgerService{
		ledger:       ledger,
		transactions: transactions,
		students:     students,
		audit:        audit,
		notifier:     notifier,
	}
}

// Apply records one deposit or withdrawal for a student
func (s *ledgerService) Apply(ctx context.Context, studentID int64, req dto.ApplyTransactionRequest, recordedBy string) (*dto.TransactionResponse, error) {
	entry, err := buildEntry(studentID, req)
	if err != nil {
		return nil, err
	}

	created, student, err := s.ledger.Apply(ctx, entry, recordedBy)
	if err != nil {
		return nil, err
	}

	metrics.CountTransaction(string(created.Type))
	s.emitBalanceChanged(student, created)

	resp := dto.ToTransactionResponse(created)
	return &resp, nil
}

// Get returns a single ledger entry by its id
func (s *ledgerService) Get(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error) {
	entry, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToTransactionResponse(entry)
	return &resp, nil
}

// Update edits a ledger entry and re-derives the student's balance
func (s *ledgerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTransactionRequest) (*dto.TransactionResponse, error) {
	updated, student, err := s.ledger.Update(ctx, id, func(t *models.Transaction) error {
		if req.Type != nil {
			newType := models.TransactionType(*req.Type)
			if !newType.IsValid() {
				return apperrors.ErrInvalidTransactionType
			}
			t.Type = newType
		}
		if req.Amount != nil {
			if !req.Amount.IsPositive() {
				return apperrors.ErrInvalidAmount
			}
			t.Amount = *req.Amount
		}
		if req.Reason != nil {
			t.Reason = *req.Reason
		}
		if req.OccurredOn != nil {
			occurredOn, err := time.Parse(dateLayout, *req.OccurredOn)
			if err != nil {
				return apperrors.NewValidationError("invalid date format, expected YYYY-MM-DD")
			}
			t.OccurredOn = occurredOn
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitBalanceChanged(student, updated)

	resp := dto.ToTransactionResponse(updated)
	return &resp, nil
}

// Delete removes a ledger entry, reversing its effect on the balance
func (s *ledgerService) Delete(ctx context.Context, id uuid.UUID) error {
	removed, student, err := s.ledger.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.emitBalanceChanged(student, removed)
	return nil
}

// BulkApply records many ledger entries, addressing students by code. Each
// entry is applied independently: one failure never rolls back the others.
func (s *ledgerService) BulkApply(ctx context.Context, req dto.BulkTransactionRequest, recordedBy string) (*dto.BulkTransactionResult, error) {
	result := &dto.BulkTransactionResult{}
	for _, entry := range req.Entries {
		if err := s.applyBulkEntry(ctx, entry, recordedBy); err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, dto.BulkTransactionError{
				StudentCode: entry.StudentCode,
				Message:     err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}

func (s *ledgerService) applyBulkEntry(ctx context.Context, entry dto.BulkTransactionEntry, recordedBy string) error {
	student, err := s.students.GetByCode(ctx, entry.StudentCode)
	if err != nil {
		return err
	}

	_, err = s.Apply(ctx, student.ID, dto.ApplyTransactionRequest{
		Type:       entry.Type,
		Amount:     entry.Amount,
		Reason:     entry.Reason,
		OccurredOn: entry.OccurredOn,
	}, recordedBy)
	return err
}

// History returns a student's full ledger with the current balance
func (s *ledgerService) History(ctx context.Context, studentID int64) (*dto.TransactionHistoryResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	entries, err := s.transactions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resp := &dto.TransactionHistoryResponse{
		StudentID:    student.ID,
		Balance:      student.Balance,
		Transactions: make([]dto.TransactionResponse, 0, len(entries)),
	}
	for _, t := range entries {
		resp.Transactions = append(resp.Transactions, dto.ToTransactionResponse(t))
	}
	return resp, nil
}

// DepositAudit returns the most recent deposit audit records
func (s *ledgerService) DepositAudit(ctx context.Context, limit int) ([]dto.AuditEntryResponse, error) {
	entries, err := s.audit.ListDeposits(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toAuditResponses(entries), nil
}

// WithdrawalAudit returns the most recent withdrawal audit records
func (s *ledgerService) WithdrawalAudit(ctx context.Context, limit int) ([]dto.AuditEntryResponse, error) {
	entries, err := s.audit.ListWithdrawals(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toAuditResponses(entries), nil
}

func toAuditResponses(entries []*models.AuditEntry) []dto.AuditEntryResponse {
	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ToAuditEntryResponse(e))
	}
	return out
}

func (s *ledgerService) emitBalanceChanged(student *models.Student, t *models.Transaction) {
	if student == nil {
		return
	}
	s.notifier.BalanceChanged(student.ID, map[string]interface{}{
		"studentId":     student.ID,
		"balance":       student.Balance,
		"transactionId": t.ID,
	})
}

// buildEntry validates a request and converts it to a ledger entry
func buildEntry(studentID int64, req dto.ApplyTransactionRequest) (*models.Transaction, error) {
	entryType := models.TransactionType(req.Type)
	if !entryType.IsValid() {
		return nil, apperrors.ErrInvalidTransactionType
	}

	if !req.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if req.Amount.Exponent() < -2 {
		return nil, apperrors.NewValidationError("amount precision is limited to two decimal places")
	}

	occurredOn, err := time.Parse(dateLayout, req.OccurredOn)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date format, expected YYYY-MM-DD")
	}

	return &models.Transaction{
		StudentID:  studentID,
		Type:       entryType,
		Amount:     req.Amount.Round(2),
		Reason:     req.Reason,
		OccurredOn: occurredOn,
	}, nil
}
