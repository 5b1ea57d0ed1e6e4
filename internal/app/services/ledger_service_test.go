package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
)

// fakeLedger keeps students and ledger entries in memory with the same
// atomicity rules as the database: a mutation either fully applies or leaves
// everything untouched.
type fakeLedger struct {
	students    map[int64]*models.Student
	entries     map[uuid.UUID]*models.Transaction
	deposits    []*models.AuditEntry
	withdrawals []*models.AuditEntry
}

func newFakeLedger(students ...*models.Student) *fakeLedger {
	f := &fakeLedger{
		students: make(map[int64]*models.Student),
		entries:  make(map[uuid.UUID]*models.Transaction),
	}
	for _, s := range students {
		f.students[s.ID] = s
	}
	return f
}

func (f *fakeLedger) adjust(studentID int64, delta decimal.Decimal) (*models.Student, error) {
	s, ok := f.students[studentID]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	next := s.Balance.Add(delta)
	if next.IsNegative() {
		return nil, apperrors.ErrInsufficientBalance
	}
	s.Balance = next
	copied := *s
	return &copied, nil
}

func (f *fakeLedger) Apply(_ context.Context, entry *models.Transaction, _ string) (*models.Transaction, *models.Student, error) {
	student, err := f.adjust(entry.StudentID, entry.SignedAmount())
	if err != nil {
		return nil, nil, err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	stored := *entry
	f.entries[stored.ID] = &stored
	returned := stored
	return &returned, student, nil
}

func (f *fakeLedger) Update(_ context.Context, id uuid.UUID, mutate func(*models.Transaction) error) (*models.Transaction, *models.Student, error) {
	existing, ok := f.entries[id]
	if !ok {
		return nil, nil, apperrors.ErrTransactionNotFound
	}
	candidate := *existing
	oldSigned := candidate.SignedAmount()
	if err := mutate(&candidate); err != nil {
		return nil, nil, err
	}
	student, err := f.adjust(candidate.StudentID, candidate.SignedAmount().Sub(oldSigned))
	if err != nil {
		return nil, nil, err
	}
	f.entries[id] = &candidate
	returned := candidate
	return &returned, student, nil
}

func (f *fakeLedger) Delete(_ context.Context, id uuid.UUID) (*models.Transaction, *models.Student, error) {
	existing, ok := f.entries[id]
	if !ok {
		return nil, nil, apperrors.ErrTransactionNotFound
	}
	student, err := f.adjust(existing.StudentID, existing.SignedAmount().Neg())
	if err != nil {
		return nil, nil, err
	}
	removed := *existing
	delete(f.entries, id)
	return &removed, student, nil
}

func (f *fakeLedger) ListByStudent(_ context.Context, studentID int64) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, e := range f.entries {
		if e.StudentID == studentID {
			copied := *e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredOn.Before(out[j].OccurredOn)
	})
	return out, nil
}

func (f *fakeLedger) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeLedger) GetByCode(_ context.Context, code string) (*models.Student, error) {
	for _, s := range f.students {
		if s.Code == code {
			copied := *s
			return &copied, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeLedger) ListDeposits(_ context.Context, limit int) ([]*models.AuditEntry, error) {
	return capAuditEntries(f.deposits, limit), nil
}

func (f *fakeLedger) ListWithdrawals(_ context.Context, limit int) ([]*models.AuditEntry, error) {
	return capAuditEntries(f.withdrawals, limit), nil
}

func capAuditEntries(entries []*models.AuditEntry, limit int) []*models.AuditEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// fakeEntryReader exposes the ledger entries by transaction id, keeping the
// student-keyed GetByID on fakeLedger itself out of its method set
type fakeEntryReader struct{ *fakeLedger }

func (f fakeEntryReader) GetByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, apperrors.ErrTransactionNotFound
	}
	copied := *e
	return &copied, nil
}

func newTestLedgerService(store *fakeLedger) LedgerService {
	return NewLedgerService(store, fakeEntryReader{store}, store, store, NopNotifier())
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedgerApplyDepositAndWithdraw(t *testing.T) {
	store := newFakeLedger(&models.Student{ID: 1, Code: "S-001", Name: "Aisha Khan"})
	svc := newTestLedgerService(store)
	ctx := context.Background()

	_, err := svc.Apply(ctx, 1, dto.ApplyTransactionRequest{
		Type: "deposit", Amount: amount("100"), Reason: "allowance", OccurredOn: "2026-01-05",
	}, "admin")
	require.NoError(t, err)

	resp, err := svc.Apply(ctx, 1, dto.ApplyTransactionRequest{
		Type: "withdraw", Amount: amount("30"), Reason: "book fair", OccurredOn: "2026-01-10",
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "withdraw", resp.Type)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	assert.True(t, history.Balance.Equal(amount("70")), "expected balance 70, got %s", history.Balance)
	assert.Len(t, history.Transactions, 2)
	assert.Equal(t, "2026-01-05", history.Transactions[0].OccurredOn)
}

func TestLedgerWithdrawInsufficientBalance(t *testing.T) {
	store := newFakeLedger(&models.Student{ID: 1, Code: "S-001", Name: "Aisha Khan", Balance: amount("20")})
	svc := newTestLedgerService(store)

	_, err := svc.Apply(context.Background(), 1, dto.ApplyTransactionRequest{
		Type: "withdraw", Amount: amount("50"), OccurredOn: "2026-01-10",
	}, "admin")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	// The failed withdrawal must leave the balance untouched
	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, history.Balance.Equal(amount("20")))
	assert.Empty(t, history.Transactions)
}

func TestLedgerApplyValidation(t *testing.T) {
	store := newFakeLedger(&models.Student{ID: 1})
	svc := newTestLedgerService(store)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     dto.ApplyTransactionRequest
		wantErr error
	}{
		{
			name:    "unknown type",
			req:     dto.ApplyTransactionRequest{Type: "transfer", Amount: amount("10"), OccurredOn: "2026-01-01"},
			wantErr: apperrors.ErrInvalidTransactionType,
		},
		{
			name:    "zero amount",
			req:     dto.ApplyTransactionRequest{Type: "deposit", Amount: amount("0"), OccurredOn: "2026-01-01"},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			req:     dto.ApplyTransactionRequest{Type: "deposit", Amount: amount("-5"), OccurredOn: "2026-01-01"},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name:    "bad date",
			req:     dto.ApplyTransactionRequest{Type: "deposit", Amount: amount("5"), OccurredOn: "01/02/2026"},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "too many decimal places",
			req:     dto.ApplyTransactionRequest{Type: "deposit", Amount: amount("5.001"), OccurredOn: "2026-01-01"},
			wantErr: apperrors.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Apply(ctx, 1, tt.req, "admin")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLedgerUpdateRebalances(t *testing.T) {
	store := newFakeLedger(&models.Student{ID: 1, Code: "S-001", Name: "Aisha Khan"})
	svc := newTestLedgerService(store)
	ctx := context.Background()

	created, err := svc.Apply(ctx, 1, dto.ApplyTransactionRequest{
		Type: "deposit", Amount: amount("100"), OccurredOn: "2026-01-05",
	}, "admin")
	require.NoError(t, err)

	newAmount := amount("40")
	_, err = svc.Update(ctx, created.ID, dto.UpdateTransactionRequest{Amount: &newAmount})
	require.NoError(t, err)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	assert.True(t, history.Balance.Equal(amount("40")))
}

func TestLedgerUpdateFlipTypeGuardsBalance(t *testing.T) {
	store := newFakeLedger(&models.Student{ID: 1, Code: "S-001", Name: "Aisha Khan"})
	svc := newTestLedgerService(store)
	ctx := context.Background()

	created, err := svc.Apply(ctx, 1, dto.ApplyTransactionRequest{
		Type: "deposit", Amount: amount("100"), OccurredOn: "2026-01-05",
	}, "admin")
	require.NoError(t, err)

	// Flipping the only deposit into a withdrawal would drive the balance
	// to -100, which must be rejected.
	withdraw := "withdraw"
	_, err = svc.Update(ctx, created.ID, dto.UpdateTransactionRequest{Type: &withdraw})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	assert.True(t, history.Balance.Equal(amount("100")))
}

func TestLedgerDeleteReversesBalance(t *testing.T) {
	store := newFakeLedger(&models.Student{ID: 1, Code: "S-001", Name: "Aisha Khan"})
	svc := newTestLedgerService(store)
	ctx := context.Background()

	created, err := svc.Apply(ctx, 1, dto.ApplyTransactionRequest{
		Type: "deposit", Amount: amount("25.50"), OccurredOn: "2026-01-05",
	}, "admin")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	assert.True(t, history.Balance.IsZero())
	assert.Empty(t, history.Transactions)
}

func TestLedgerDeleteUnknownTransaction(t *testing.T) {
	store := newFakeLedger(&models.Student{ID: 1})
	svc := newTestLedgerService(store)

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
}

func TestLedgerGetEntry(t *testing.T) {
	store := newFakeLedger(&models.Student{ID: 1, Code: "S-001", Name: "Aisha Khan"})
	svc := newTestLedgerService(store)
	ctx := context.Background()

	created, err := svc.Apply(ctx, 1, dto.ApplyTransactionRequest{
		Type: "deposit", Amount: amount("10"), Reason: "allowance", OccurredOn: "2026-01-05",
	}, "admin")
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.Amount.Equal(amount("10")))

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
}

func TestLedgerDepositWithdrawSequence(t *testing.T) {
	store := newFakeLedger(&models.Student{ID: 1, Code: "S-001", Name: "Aisha Khan"})
	svc := newTestLedgerService(store)
	ctx := context.Background()

	_, err := svc.Apply(ctx, 1, dto.ApplyTransactionRequest{
		Type: "deposit", Amount: amount("500"), OccurredOn: "2025-01-01",
	}, "admin")
	require.NoError(t, err)

	_, err = svc.Apply(ctx, 1, dto.ApplyTransactionRequest{
		Type: "withdraw", Amount: amount("200"), OccurredOn: "2025-01-02",
	}, "admin")
	require.NoError(t, err)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	assert.True(t, history.Balance.Equal(amount("300")))

	// A withdrawal beyond the balance is rejected and changes nothing
	_, err = svc.Apply(ctx, 1, dto.ApplyTransactionRequest{
		Type: "withdraw", Amount: amount("1000"), OccurredOn: "2025-01-03",
	}, "admin")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	history, err = svc.History(ctx, 1)
	require.NoError(t, err)
	assert.True(t, history.Balance.Equal(amount("300")))
	assert.Len(t, history.Transactions, 2)
}

func TestLedgerAuditTrails(t *testing.T) {
	occurredOn := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeLedger()
	store.deposits = []*models.AuditEntry{
		{ID: 1, TransactionID: uuid.New(), StudentID: 1, StudentCode: "S-001",
			StudentName: "Aisha Khan", Amount: amount("500"), OccurredOn: occurredOn},
		{ID: 2, TransactionID: uuid.New(), StudentID: 2, StudentCode: "S-002",
			StudentName: "Ben Ortiz", Amount: amount("25"), OccurredOn: occurredOn},
	}
	store.withdrawals = []*models.AuditEntry{
		{ID: 3, TransactionID: uuid.New(), StudentID: 1, StudentCode: "S-001",
			StudentName: "Aisha Khan", Amount: amount("200"), OccurredOn: occurredOn},
	}
	svc := newTestLedgerService(store)

	deposits, err := svc.DepositAudit(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, "S-001", deposits[0].StudentCode)
	assert.Equal(t, "2026-02-01", deposits[0].OccurredOn)

	withdrawals, err := svc.WithdrawalAudit(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, withdrawals, 1)
	assert.True(t, withdrawals[0].Amount.Equal(amount("200")))
}

func TestLedgerBulkApplyPartialFailure(t *testing.T) {
	store := newFakeLedger(
		&models.Student{ID: 1, Code: "S-001", Balance: amount("100")},
		&models.Student{ID: 2, Code: "S-002", Balance: amount("100")},
	)
	svc := newTestLedgerService(store)

	withdraw := func(code string) dto.BulkTransactionEntry {
		return dto.BulkTransactionEntry{
			StudentCode: code, Type: "withdraw", Amount: amount("10"),
			Reason: "field trip", OccurredOn: "2026-03-01",
		}
	}

	result, err := svc.BulkApply(context.Background(), dto.BulkTransactionRequest{
		Entries: []dto.BulkTransactionEntry{withdraw("S-001"), withdraw("S-002"), withdraw("S-999")},
	}, "admin")
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "S-999", result.Errors[0].StudentCode)

	// The failed entry must not roll back the successful ones
	h1, _ := svc.History(context.Background(), 1)
	require.NotNil(t, h1)
	assert.True(t, h1.Balance.Equal(amount("90")))
}

func TestLedgerBulkApplyPerEntryValidation(t *testing.T) {
	store := newFakeLedger(&models.Student{ID: 1, Code: "S-001", Balance: amount("50")})
	svc := newTestLedgerService(store)

	result, err := svc.BulkApply(context.Background(), dto.BulkTransactionRequest{
		Entries: []dto.BulkTransactionEntry{
			{StudentCode: "S-001", Type: "deposit", Amount: amount("-1"), OccurredOn: "2026-03-01"},
			{StudentCode: "S-001", Type: "deposit", Amount: amount("10"), OccurredOn: "2026-03-01"},
		},
	}, "admin")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "S-001", result.Errors[0].StudentCode)

	h, _ := svc.History(context.Background(), 1)
	require.NotNil(t, h)
	assert.True(t, h.Balance.Equal(amount("60")))
}
