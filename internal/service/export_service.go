package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/danceflow/attendance-api/internal/models"
	"github.com/danceflow/attendance-api/internal/store"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
	"github.com/danceflow/attendance-api/pkg/export"
)

type registerStore interface {
	BatchByID(id int) (*models.Batch, error)
	StudentsByBatch(batchID int) ([]models.Student, error)
	SessionsByBatch(batchID int) []models.Session
}

// RegisterDocument is a rendered attendance register ready to serve.
type RegisterDocument struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders a batch's attendance register as a student-by-class
// grid. Marks use single letters (P, A, L) and a dash for unmarked.
type ExportService struct {
	store  registerStore
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	authz  *Policy
	logger *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(st registerStore, authz *Policy, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		store:  st,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		authz:  authz,
		logger: logger,
	}
}

// Register renders the batch register in the requested format, csv or pdf.
func (s *ExportService) Register(ctx context.Context, claims *models.JWTClaims, batchID int, format string) (*RegisterDocument, error) {
	if err := s.authz.Authorize(claims.Role, ActionRegisterExport); err != nil {
		return nil, err
	}

	batch, err := s.store.BatchByID(batchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	roster, err := s.store.StudentsByBatch(batch.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	dataset := s.buildRegister(batch, roster)

	switch format {
	case "csv", "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv register")
		}
		return &RegisterDocument{
			FileName:    fmt.Sprintf("register-batch-%d.csv", batch.ID),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, fmt.Sprintf("Attendance Register: %s", batch.Name))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf register")
		}
		return &RegisterDocument{
			FileName:    fmt.Sprintf("register-batch-%d.pdf", batch.ID),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported register format %q", format))
	}
}

// buildRegister produces one row per enrolled student with a column per held
// class. Sessions are ordered by class number; students keep roster order.
func (s *ExportService) buildRegister(batch *models.Batch, roster []models.Student) export.Dataset {
	sessions := s.store.SessionsByBatch(batch.ID)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].ClassNumber < sessions[j].ClassNumber
	})

	headers := []string{"Student"}
	for _, session := range sessions {
		header := fmt.Sprintf("Class %d", session.ClassNumber)
		if session.Date != "" {
			header = fmt.Sprintf("Class %d (%s)", session.ClassNumber, session.Date)
		}
		headers = append(headers, header)
	}

	statusByClass := make([]map[int]models.AttendanceStatus, len(sessions))
	for i, session := range sessions {
		marks := make(map[int]models.AttendanceStatus, len(session.Attendance))
		for _, rec := range session.Attendance {
			marks[rec.StudentID] = rec.Status
		}
		statusByClass[i] = marks
	}

	var rows [][]string
	for _, student := range roster {
		row := make([]string, 0, len(headers))
		row = append(row, student.Name)
		for i := range sessions {
			status, ok := statusByClass[i][student.ID]
			if !ok {
				status = models.StatusUnmarked
			}
			row = append(row, registerMark(status))
		}
		rows = append(rows, row)
	}

	return export.Dataset{Headers: headers, Rows: rows}
}

func registerMark(status models.AttendanceStatus) string {
	switch status {
	case models.StatusPresent:
		return "P"
	case models.StatusAbsent:
		return "A"
	case models.StatusLate:
		return "L"
	default:
		return "-"
	}
}
