package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/campuspay/studentbank/internal/app/models"
)

// StatementData is everything a printed account statement needs
type StatementData struct {
	Student      *models.Student
	Transactions []*models.Transaction
	SchoolName   string
}

// Statement renders a student's account statement as a PDF. Entries are
// listed oldest first with a running balance, and the student's QR login
// code is embedded so the printout doubles as a login card.
func Statement(data StatementData) ([]byte, error) {
	if data.Student == nil {
		return nil, fmt.Errorf("statement requires a student")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Account Statement", false)
	pdf.AddPage()

	title := data.SchoolName
	if title == "" {
		title = "Student Bank"
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "Account Statement", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 7, "Name:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(80, 7, data.Student.Name, "", 0, "L", false, 0, "")

	// QR login card in the top right corner
	if png, err := StudentQR(data.Student.Code); err == nil {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("student-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("student-qr", 160, 28, 35, 35, false, opts, 0, "")
	}
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 7, "Code:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(80, 7, data.Student.Code, "", 1, "L", false, 0, "")

	if data.Student.ClassName != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(30, 7, "Class:", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(80, 7, data.Student.ClassName, "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	// Ledger table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(28, 8, "Date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(62, 8, "Reason", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Deposit", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Withdrawal", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Balance", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	running := decimal.Zero
	for _, t := range data.Transactions {
		running = running.Add(t.SignedAmount())

		deposit, withdrawal := "", ""
		if t.Type == models.TransactionWithdraw {
			withdrawal = t.Amount.StringFixed(2)
		} else {
			deposit = t.Amount.StringFixed(2)
		}

		pdf.CellFormat(28, 7, t.OccurredOn.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(62, 7, t.Reason, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, deposit, "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, withdrawal, "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, running.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(150, 8, "Current balance", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, data.Student.Balance.StringFixed(2), "1", 1, "R", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
