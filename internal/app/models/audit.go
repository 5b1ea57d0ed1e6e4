package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditEntry is an append-only record of a deposit or withdrawal, kept with a
// denormalized student snapshot so it survives student edits and deletions.
type AuditEntry struct {
	ID            int64
	TransactionID uuid.UUID
	StudentID     int64
	StudentCode   string
	StudentName   string
	Amount        decimal.Decimal
	Reason        string
	OccurredOn    time.Time
	RecordedBy    string
	RecordedAt    time.Time
}
