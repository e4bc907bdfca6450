package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/dto"
	"github.com/noah-isme/academic-records/internal/grading"
	"github.com/noah-isme/academic-records/internal/models"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
	"github.com/noah-isme/academic-records/pkg/export"
	"github.com/noah-isme/academic-records/pkg/storage"
)

// StudentExportHeaders is the column order of student exports.
var StudentExportHeaders = []string{"Name", "Roll Number", "Department", "Email", "Phone", "Academic Year", "Registration Date"}

type studentViewer interface {
	Matching(ctx context.Context, view models.StudentView) ([]models.Student, error)
	Get(ctx context.Context, id string) (*models.Student, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderTranscript(doc export.TranscriptDocument) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportService renders student lists and transcripts and hands out signed
// download links for stored files.
type ExportService struct {
	students  studentViewer
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// default CSV and PDF exporters.
func NewExportService(students studentViewer, files fileStorage, signer *storage.SignedURLSigner, validate *validator.Validate, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		students:  students,
		storage:   files,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Students renders the filtered and sorted student view, stores the file and
// returns a signed download link.
func (s *ExportService) Students(ctx context.Context, req dto.StudentExportRequest) (*dto.ExportResponse, error) {
	req.Format = dto.ExportFormat(strings.ToLower(string(req.Format)))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid export request")
	}
	view := models.StudentView{
		Filter: models.StudentFilter{
			Query:        req.Query,
			Department:   models.Department(req.Department),
			AcademicYear: models.AcademicYear(req.AcademicYear),
		},
		SortBy: models.StudentSortKey(req.SortBy),
		Order:  models.SortOrder(req.Order),
	}
	students, err := s.students.Matching(ctx, view)
	if err != nil {
		return nil, err
	}

	payload, err := s.Render(req.Format, students)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := ExportFilename(req.Format, s.now())
	relPath, err := s.storage.Save(path.Join(exportID, filename), payload)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign export")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("student export stored",
		zap.String("export_id", exportID),
		zap.String("format", string(req.Format)),
		zap.Int("rows", len(students)),
	)
	return &dto.ExportResponse{
		Filename:  filename,
		Format:    req.Format,
		Rows:      len(students),
		URL:       fmt.Sprintf("%s/exports/download?token=%s", prefix, token),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Render encodes students in the requested format.
func (s *ExportService) Render(format dto.ExportFormat, students []models.Student) ([]byte, error) {
	dataset := StudentDataset(students)
	switch format {
	case dto.ExportFormatCSV:
		return s.csv.Render(dataset)
	case dto.ExportFormatPDF:
		return s.pdf.Render(dataset, "Student Records")
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// TranscriptPDF renders the academic transcript of one student.
func (s *ExportService) TranscriptPDF(ctx context.Context, studentID string) ([]byte, string, error) {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.pdf.RenderTranscript(TranscriptDocument(*student))
	if err != nil {
		return nil, "", appErrors.Internal(err, "failed to render transcript")
	}
	return payload, fmt.Sprintf("transcript-%s.pdf", student.RollNumber), nil
}

// Resolve validates a download token and returns the stored file name.
func (s *ExportService) Resolve(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	switch {
	case errors.Is(err, storage.ErrTokenExpired):
		return "", appErrors.Clone(appErrors.ErrValidation, "download link expired")
	case err != nil:
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid download token")
	}
	return relPath, nil
}

// Open returns a handle to a stored export.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return file, nil
}

// PurgeExpired deletes stored exports older than the result TTL.
func (s *ExportService) PurgeExpired() ([]string, error) {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		return nil, err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
	return deleted, nil
}

// ExportFilename names an export after its format and date, for example
// students-2024-09-01.csv.
func ExportFilename(format dto.ExportFormat, at time.Time) string {
	return fmt.Sprintf("students-%s.%s", at.Format("2006-01-02"), format)
}

// StudentDataset lays students out under StudentExportHeaders, one row each.
func StudentDataset(students []models.Student) export.Dataset {
	rows := make([][]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, []string{
			st.Name,
			st.RollNumber,
			string(st.Department),
			st.Email,
			st.PhoneNumber,
			string(st.AcademicYear),
			st.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	return export.Dataset{Headers: StudentExportHeaders, Rows: rows}
}

// TranscriptDocument converts a student record into its printable transcript.
func TranscriptDocument(student models.Student) export.TranscriptDocument {
	transcript := grading.Transcript(student.ID, student.Enrollments)
	sections := make([]export.TranscriptSection, 0, len(transcript.Semesters))
	for _, semester := range transcript.Semesters {
		rows := make([]export.TranscriptRow, 0, len(semester.Enrollments))
		for _, e := range semester.Enrollments {
			rows = append(rows, export.TranscriptRow{
				Code:        e.SubjectCode,
				Name:        e.SubjectName,
				Instructor:  e.InstructorName,
				CreditHours: e.CreditHours,
				Grade:       string(e.Grade),
			})
		}
		sections = append(sections, export.TranscriptSection{
			Semester:    semester.Semester,
			Rows:        rows,
			CreditHours: semester.CreditHours,
			GPA:         grading.Format(semester.GPA),
		})
	}
	return export.TranscriptDocument{
		StudentName:  student.Name,
		RollNumber:   student.RollNumber,
		Department:   string(student.Department),
		AcademicYear: string(student.AcademicYear),
		Sections:     sections,
		CreditHours:  transcript.CreditHours,
		CGPA:         grading.Format(transcript.CGPA),
	}
}
