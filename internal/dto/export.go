package dto

import "time"

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// StudentExportRequest selects the students to export using the list view
// parameters.
type StudentExportRequest struct {
	Format       ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Query        string       `json:"query"`
	Department   string       `json:"department"`
	AcademicYear string       `json:"academicYear"`
	SortBy       string       `json:"sortBy"`
	Order        string       `json:"order"`
}

// ExportResponse describes a stored export and how to download it.
type ExportResponse struct {
	Filename  string       `json:"filename"`
	Format    ExportFormat `json:"format"`
	Rows      int          `json:"rows"`
	URL       string       `json:"url"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}
