package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/db"
)

var auditColumns = []string{
	"id", "transaction_id", "student_id", "student_code", "student_name",
	"amount", "reason", "occurred_on", "recorded_by", "recorded_at",
}

// AuditRepository handles the append-only deposit and withdrawal records
type AuditRepository struct {
	db *db.PostgresDB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(database *db.PostgresDB) *AuditRepository {
	return &AuditRepository{db: database}
}

// InsertTx appends an audit entry inside an existing database transaction
func (r *AuditRepository) InsertTx(ctx context.Context, tx pgx.Tx, table string, entry *models.AuditEntry) error {
	query, args, err := psql.Insert(table).
		Columns("transaction_id", "student_id", "student_code", "student_name",
			"amount", "reason", "occurred_on", "recorded_by").
		Values(entry.TransactionID, entry.StudentID, entry.StudentCode, entry.StudentName,
			entry.Amount, entry.Reason, entry.OccurredOn, entry.RecordedBy).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build audit insert: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListDeposits returns the deposit audit trail, newest first
func (r *AuditRepository) ListDeposits(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	return r.list(ctx, "deposit_audit", limit)
}

// ListWithdrawals returns the withdrawal audit trail, newest first
func (r *AuditRepository) ListWithdrawals(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	return r.list(ctx, "withdrawal_audit", limit)
}

func (r *AuditRepository) list(ctx context.Context, table string, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := psql.Select(auditColumns...).
		From(table).
		OrderBy("recorded_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(
			&e.ID, &e.TransactionID, &e.StudentID, &e.StudentCode, &e.StudentName,
			&e.Amount, &e.Reason, &e.OccurredOn, &e.RecordedBy, &e.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
