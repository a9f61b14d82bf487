package utils

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ExamTicketPDFData is everything printed on an exam admission ticket.
type ExamTicketPDFData struct {
	ExamID            int
	CenterName        string
	ClientUID         int64
	ClientName        string
	CertificationID   string
	CertificationName string
	ExamCode          string
	DurationMinutes   int
	TestCenterName    string
	Date              time.Time
	CheckinURL        string
	QRCodePNG         []byte
	GeneratedAt       time.Time
}

func GenerateExamTicketPDF(data ExamTicketPDFData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 8, data.CenterName, "", 1, "C", false, 0, "")

	pdf.SetDrawColor(0, 51, 102)
	pdf.SetLineWidth(0.8)
	pdf.Line(20, pdf.GetY()+3, 190, pdf.GetY()+3)
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 13)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "EXAM ADMISSION TICKET", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Ticket No. %06d", data.ExamID), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// Candidate and exam details
	colLabel := 50.0
	colValue := 120.0

	duration := "-"
	if data.DurationMinutes > 0 {
		duration = fmt.Sprintf("%d minutes", data.DurationMinutes)
	}
	examCode := data.ExamCode
	if examCode == "" {
		examCode = "-"
	}

	rows := [][]string{
		{"Candidate", data.ClientName},
		{"Candidate UID", fmt.Sprintf("%d", data.ClientUID)},
		{"Certification", fmt.Sprintf("%s - %s", data.CertificationID, data.CertificationName)},
		{"Exam code", examCode},
		{"Duration", duration},
		{"Test center", data.TestCenterName},
		{"Date", data.Date.Format("02/01/2006 15:04 MST")},
	}

	for i, row := range rows {
		fill := i%2 == 0
		if fill {
			pdf.SetFillColor(240, 245, 255)
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(colLabel, 7, row[0], "1", 0, "L", fill, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(colValue, 7, truncate(row[1], 70), "1", 1, "L", fill, 0, "")
	}
	pdf.Ln(8)

	pdf.MultiCell(0, 6,
		"Present this ticket and an official photo ID at the test center reception. "+
			"Staff will scan the QR code to confirm your attendance.",
		"", "L", false)
	pdf.Ln(4)

	// QR code
	if len(data.QRCodePNG) > 0 {
		y := pdf.GetY()
		pdf.RegisterImageOptionsReader("qrcode", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data.QRCodePNG))
		pdf.ImageOptions("qrcode", 80, y, 50, 50, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.SetY(y + 52)
		pdf.SetFont("Arial", "", 7)
		pdf.CellFormat(0, 4, data.CheckinURL, "", 1, "C", false, 0, "")
	}

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 7)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 5,
		fmt.Sprintf("Generated on %s", data.GeneratedAt.Format("02/01/2006 15:04")),
		"", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
