package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType identifies the direction of a ledger entry
type TransactionType string

const (
	TransactionDeposit  TransactionType = "deposit"
	TransactionWithdraw TransactionType = "withdraw"
)

// IsValid reports whether the type is one of the known values
func (t TransactionType) IsValid() bool {
	return t == TransactionDeposit || t == TransactionWithdraw
}

// Transaction is a single ledger entry against a student's balance
type Transaction struct {
	ID         uuid.UUID
	StudentID  int64
	Type       TransactionType
	Amount     decimal.Decimal
	Reason     string
	OccurredOn time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SignedAmount returns the amount with the sign implied by the type,
// positive for deposits and negative for withdrawals.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionWithdraw {
		return t.Amount.Neg()
	}
	return t.Amount
}
