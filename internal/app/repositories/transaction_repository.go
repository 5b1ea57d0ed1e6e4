package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/db"
)

// TransactionRepository handles read-only access to the ledger
type TransactionRepository struct {
	db *db.PostgresDB
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(database *db.PostgresDB) *TransactionRepository {
	return &TransactionRepository{db: database}
}

// GetByID returns a single ledger entry
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query, args, err := psql.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var t models.Transaction
	if err := scanTransactionInto(r.db.Pool.QueryRow(ctx, query, args...), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByStudent returns a student's ledger entries, oldest first
func (r *TransactionRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Transaction, error) {
	query, args, err := psql.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("occurred_on ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.ID, &t.StudentID, &t.Type, &t.Amount, &t.Reason,
			&t.OccurredOn, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}
