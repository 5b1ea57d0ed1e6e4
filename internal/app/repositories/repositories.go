package repositories

import (
	"github.com/Masterminds/squirrel"

	"github.com/campuspay/studentbank/internal/db"
)

// psql builds queries with PostgreSQL-style $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories bundles all repositories for dependency injection
type Repositories struct {
	Students      *StudentRepository
	Ledger        *LedgerRepository
	Transactions  *TransactionRepository
	Admins        *AdminRepository
	Sessions      *SessionRepository
	AcademicYears *AcademicYearRepository
	Audit         *AuditRepository
}

// NewRepositories creates all repositories sharing one database handle
func NewRepositories(database *db.PostgresDB) *Repositories {
	audit := NewAuditRepository(database)
	return &Repositories{
		Students:      NewStudentRepository(database),
		Ledger:        NewLedgerRepository(database, audit),
		Transactions:  NewTransactionRepository(database),
		Admins:        NewAdminRepository(database),
		Sessions:      NewSessionRepository(database),
		AcademicYears: NewAcademicYearRepository(database),
		Audit:         audit,
	}
}
