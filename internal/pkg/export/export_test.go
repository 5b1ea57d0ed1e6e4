package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspay/studentbank/internal/app/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestStudentQR(t *testing.T) {
	png, err := StudentQR("S-001")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "expected PNG output")

	_, err = StudentQR("")
	assert.Error(t, err)
}

func TestStatementRendersPDF(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC)
	}

	student := &models.Student{
		ID: 1, Code: "S-001", Name: "Aisha Khan", ClassName: "4B",
		Balance: decimal.RequireFromString("70"),
	}
	entries := []*models.Transaction{
		{Type: models.TransactionDeposit, Amount: decimal.RequireFromString("100"), Reason: "allowance", OccurredOn: day(5)},
		{Type: models.TransactionWithdraw, Amount: decimal.RequireFromString("30"), Reason: "book fair", OccurredOn: day(10)},
	}

	pdf, err := Statement(StatementData{Student: student, Transactions: entries, SchoolName: "Riverdale Primary"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "expected PDF output")
	assert.Greater(t, len(pdf), 1000)
}

func TestStatementRequiresStudent(t *testing.T) {
	_, err := Statement(StatementData{})
	assert.Error(t, err)
}

func TestStatementEmptyLedger(t *testing.T) {
	student := &models.Student{ID: 1, Code: "S-002", Name: "Ben Okoro"}

	pdf, err := Statement(StatementData{Student: student})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
