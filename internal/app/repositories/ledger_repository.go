package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/campuspay/studentbank/internal/app/models"
	"github.com/campuspay/studentbank/internal/db"
	"github.com/campuspay/studentbank/internal/pkg/apperrors"
)

var transactionColumns = []string{
	"id", "student_id", "type", "amount", "reason",
	"occurred_on", "created_at", "updated_at",
}

// LedgerRepository performs balance-mutating operations. Every operation runs
// inside a single database transaction so the stored balance can never drift
// from the transaction history, even under concurrent requests.
type LedgerRepository struct {
	db    *db.PostgresDB
	audit *AuditRepository
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(database *db.PostgresDB, audit *AuditRepository) *LedgerRepository {
	return &LedgerRepository{db: database, audit: audit}
}

// Apply records a new deposit or withdrawal, atomically adjusting the
// student's balance and appending an audit entry. Withdrawals that would
// take the balance below zero fail with ErrInsufficientBalance.
func (r *LedgerRepository) Apply(ctx context.Context, entry *models.Transaction, recordedBy string) (*models.Transaction, *models.Student, error) {
	var created models.Transaction
	var student models.Student

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		s, err := r.adjustBalance(ctx, tx, entry.StudentID, entry.SignedAmount())
		if err != nil {
			return err
		}
		student = *s

		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}

		query, args, err := psql.Insert("transactions").
			Columns("id", "student_id", "type", "amount", "reason", "occurred_on").
			Values(entry.ID, entry.StudentID, entry.Type, entry.Amount, entry.Reason, entry.OccurredOn).
			Suffix("RETURNING " + joinColumns(transactionColumns)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert query: %w", err)
		}

		if err := scanTransactionInto(tx.QueryRow(ctx, query, args...), &created); err != nil {
			return err
		}

		return r.audit.InsertTx(ctx, tx, auditTableFor(entry.Type), &models.AuditEntry{
			TransactionID: created.ID,
			StudentID:     student.ID,
			StudentCode:   student.Code,
			StudentName:   student.Name,
			Amount:        created.Amount,
			Reason:        created.Reason,
			OccurredOn:    created.OccurredOn,
			RecordedBy:    recordedBy,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return &created, &student, nil
}

// Update edits an existing ledger entry and atomically moves the student's
// balance by the difference between the old and new signed amounts.
func (r *LedgerRepository) Update(ctx context.Context, id uuid.UUID, mutate func(*models.Transaction) error) (*models.Transaction, *models.Student, error) {
	var updated models.Transaction
	var student models.Student

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := lockTransaction(ctx, tx, id)
		if err != nil {
			return err
		}

		oldSigned := existing.SignedAmount()
		if err := mutate(existing); err != nil {
			return err
		}
		delta := existing.SignedAmount().Sub(oldSigned)

		s, err := r.adjustBalance(ctx, tx, existing.StudentID, delta)
		if err != nil {
			return err
		}
		student = *s

		query, args, err := psql.Update("transactions").
			Set("type", existing.Type).
			Set("amount", existing.Amount).
			Set("reason", existing.Reason).
			Set("occurred_on", existing.OccurredOn).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": id}).
			Suffix("RETURNING " + joinColumns(transactionColumns)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update query: %w", err)
		}

		return scanTransactionInto(tx.QueryRow(ctx, query, args...), &updated)
	})
	if err != nil {
		return nil, nil, err
	}
	return &updated, &student, nil
}

// Delete removes a ledger entry and atomically reverses its effect on the
// student's balance.
func (r *LedgerRepository) Delete(ctx context.Context, id uuid.UUID) (*models.Transaction, *models.Student, error) {
	var removed models.Transaction
	var student models.Student

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := lockTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		removed = *existing

		s, err := r.adjustBalance(ctx, tx, existing.StudentID, existing.SignedAmount().Neg())
		if err != nil {
			return err
		}
		student = *s

		query, args, err := psql.Delete("transactions").
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &removed, &student, nil
}

// adjustBalance moves a student's balance by delta inside tx. A negative
// delta is applied only when the balance stays non-negative; otherwise the
// transaction fails with ErrInsufficientBalance.
func (r *LedgerRepository) adjustBalance(ctx context.Context, tx pgx.Tx, studentID int64, delta decimal.Decimal) (*models.Student, error) {
	builder := psql.Update("students").
		Set("balance", squirrel.Expr("balance + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": studentID})

	if delta.IsNegative() {
		builder = builder.Where(squirrel.Expr("balance >= ?", delta.Neg()))
	}

	query, args, err := builder.
		Suffix("RETURNING " + joinColumns(studentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build balance update: %w", err)
	}

	student, err := scanStudent(tx.QueryRow(ctx, query, args...))
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, apperrors.ErrStudentNotFound) {
		return nil, err
	}

	// The guarded update matched no row: either the student is gone or the
	// balance check failed. Distinguish the two for the caller.
	var exists bool
	if checkErr := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)`, studentID,
	).Scan(&exists); checkErr != nil {
		return nil, checkErr
	}
	if !exists {
		return nil, apperrors.ErrStudentNotFound
	}
	return nil, apperrors.ErrInsufficientBalance
}

// lockTransaction loads a ledger entry with a row lock held for the rest of tx
func lockTransaction(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Transaction, error) {
	query, args, err := psql.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var t models.Transaction
	if err := scanTransactionInto(tx.QueryRow(ctx, query, args...), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTransactionInto(row pgx.Row, t *models.Transaction) error {
	err := row.Scan(
		&t.ID, &t.StudentID, &t.Type, &t.Amount, &t.Reason,
		&t.OccurredOn, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrTransactionNotFound
		}
		return fmt.Errorf("failed to scan transaction: %w", err)
	}
	return nil
}

func auditTableFor(t models.TransactionType) string {
	if t == models.TransactionWithdraw {
		return "withdrawal_audit"
	}
	return "deposit_audit"
}
