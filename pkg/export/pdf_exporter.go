package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// TranscriptRow is one course line of a transcript document.
type TranscriptRow struct {
	Code        string
	Name        string
	Instructor  string
	CreditHours int
	Grade       string
}

// TranscriptSection groups the rows of one semester.
type TranscriptSection struct {
	Semester    string
	Rows        []TranscriptRow
	CreditHours int
	GPA         string
}

// TranscriptDocument is the printable academic record of one student.
type TranscriptDocument struct {
	StudentName  string
	RollNumber   string
	Department   string
	AcademicYear string
	Sections     []TranscriptSection
	CreditHours  int
	CGPA         string
}

// PDFExporter renders datasets and transcripts with gofpdf.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays the dataset out as a landscape table under an optional title.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	colWidth := 277.0 / float64(len(data.Headers))
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range data.Headers {
			pdf.CellFormat(colWidth, 8, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	header()
	_, pageHeight := pdf.GetPageSize()
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-12 {
			pdf.AddPage()
			header()
		}
		for i := range data.Headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(colWidth, 7, fit(pdf, value, colWidth-2), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return output(pdf)
}

// RenderTranscript produces a portrait transcript with one table per semester.
func (e *PDFExporter) RenderTranscript(doc TranscriptDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Academic Transcript", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	for _, line := range [][2]string{
		{"Name", doc.StudentName},
		{"Roll Number", doc.RollNumber},
		{"Department", doc.Department},
		{"Academic Year", doc.AcademicYear},
	} {
		pdf.CellFormat(35, 6, line[0]+":", "", 0, "", false, 0, "")
		pdf.CellFormat(0, 6, line[1], "", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{25, 65, 50, 20, 20}
	headers := []string{"Code", "Subject", "Instructor", "Credits", "Grade"}
	for _, section := range doc.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, section.Semester, "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "B", 9)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Rows {
			pdf.CellFormat(widths[0], 6, row.Code, "1", 0, "", false, 0, "")
			pdf.CellFormat(widths[1], 6, fit(pdf, row.Name, widths[1]-2), "1", 0, "", false, 0, "")
			pdf.CellFormat(widths[2], 6, fit(pdf, row.Instructor, widths[2]-2), "1", 0, "", false, 0, "")
			pdf.CellFormat(widths[3], 6, fmt.Sprintf("%d", row.CreditHours), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[4], 6, row.Grade, "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 7, fmt.Sprintf("Credits: %d    Semester GPA: %s", section.CreditHours, section.GPA), "", 1, "R", false, 0, "")
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total credits: %d    CGPA: %s", doc.CreditHours, doc.CGPA), "T", 1, "R", false, 0, "")
	return output(pdf)
}

func fit(pdf *gofpdf.Fpdf, value string, width float64) string {
	if pdf.GetStringWidth(value) <= width {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
