package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/danceflow/attendance-api/internal/models"
	"github.com/danceflow/attendance-api/internal/store"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
)

type rosterStore interface {
	StudentsByBatch(batchID int) ([]models.Student, error)
	AddStudentToBatch(batchID int, name string) (*models.Student, error)
	RemoveStudentFromBatch(batchID, studentID int) error
}

// AddStudentRequest enrolls a new student into a batch.
type AddStudentRequest struct {
	Name string `json:"name" validate:"required"`
}

// StudentService owns batch roster membership. Student ids are allocated
// globally and survive removal from every batch.
type StudentService struct {
	store     rosterStore
	authz     *Policy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(st rosterStore, authz *Policy, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: st, authz: authz, validator: validate, logger: logger}
}

// ListForBatch returns the batch roster in enrollment order.
func (s *StudentService) ListForBatch(ctx context.Context, batchID int) ([]models.Student, error) {
	students, err := s.store.StudentsByBatch(batchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return students, nil
}

// Add enrolls a brand new student into the batch. Fully unmarked sessions of
// the batch gain an Unmarked record for them; partially or fully marked
// sessions are left untouched.
func (s *StudentService) Add(ctx context.Context, claims *models.JWTClaims, batchID int, req AddStudentRequest) (*models.Student, error) {
	if err := s.authz.Authorize(claims.Role, ActionRosterModify); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.store.AddStudentToBatch(batchID, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add student")
	}

	s.logger.Info("student enrolled", zap.Int("student_id", student.ID), zap.Int("batch_id", batchID))
	return student, nil
}

// Remove drops a student from the batch roster. Attendance history in marked
// sessions is kept; the global student record always survives.
func (s *StudentService) Remove(ctx context.Context, claims *models.JWTClaims, batchID, studentID int) error {
	if err := s.authz.Authorize(claims.Role, ActionRosterModify); err != nil {
		return err
	}
	if err := s.store.RemoveStudentFromBatch(batchID, studentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove student")
	}
	s.logger.Info("student removed from batch", zap.Int("student_id", studentID), zap.Int("batch_id", batchID))
	return nil
}
