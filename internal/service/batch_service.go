package service

import (
	"context"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/danceflow/attendance-api/internal/models"
	"github.com/danceflow/attendance-api/internal/store"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
)

type batchStore interface {
	Batches() []models.Batch
	BatchByID(id int) (*models.Batch, error)
	SaveBatch(draft models.BatchDraft, id *int, createdBy int) (*models.Batch, error)
	DeleteBatch(id int) error
	Users() []models.User
	UserByID(id int) (*models.User, error)
}

// SaveBatchRequest carries the editable batch fields.
type SaveBatchRequest struct {
	Name          string `json:"name" validate:"required"`
	InstructorID  int    `json:"instructorId" validate:"required"`
	Schedule      string `json:"schedule" validate:"required"`
	TotalSessions int    `json:"totalSessions" validate:"required,gt=0"`
	Color         string `json:"color" validate:"omitempty,hexcolor"`
	StartDate     string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
}

// BatchView decorates a batch with its resolved instructor display name.
type BatchView struct {
	models.Batch
	InstructorName string `json:"instructorName"`
}

// BatchService owns batch lifecycle and the derived batch list views.
type BatchService struct {
	store     batchStore
	authz     *Policy
	validator *validator.Validate
	logger    *zap.Logger
	collator  *collate.Collator
}

// NewBatchService constructs BatchService.
func NewBatchService(st batchStore, authz *Policy, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		store:     st,
		authz:     authz,
		validator: validate,
		logger:    logger,
		collator:  collate.New(language.English, collate.Loose),
	}
}

// List returns the batches visible to the caller, ordered by the sort option.
// Admins see every batch; teachers only the ones they instruct. The view is
// recomputed on every call and sorting never touches the stored collection.
func (s *BatchService) List(ctx context.Context, claims *models.JWTClaims, sortBy models.SortOption) ([]BatchView, error) {
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	names := s.instructorNames()
	visible := make([]BatchView, 0)
	for _, b := range s.store.Batches() {
		if claims.Role != models.RoleAdmin && b.InstructorID != claims.UserID {
			continue
		}
		visible = append(visible, BatchView{Batch: b, InstructorName: names[b.InstructorID]})
	}

	s.sortBatches(visible, sortBy)
	return visible, nil
}

// sortBatches orders the list in place with a stable multi-key comparator.
// Name and instructor keys use locale-aware collation; an unknown sort option
// preserves the input order.
func (s *BatchService) sortBatches(batches []BatchView, sortBy models.SortOption) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		switch sortBy {
		case models.SortNameAsc:
			return s.collator.CompareString(a.Name, b.Name) < 0
		case models.SortNameDesc:
			return s.collator.CompareString(b.Name, a.Name) < 0
		case models.SortInstructorAsc:
			return s.collator.CompareString(a.InstructorName, b.InstructorName) < 0
		case models.SortStudentsDesc:
			return len(b.StudentIDs) < len(a.StudentIDs)
		default:
			return false
		}
	})
}

// Get returns a single batch with its instructor name resolved.
func (s *BatchService) Get(ctx context.Context, id int) (*BatchView, error) {
	batch, err := s.store.BatchByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return &BatchView{Batch: *batch, InstructorName: s.instructorNames()[batch.InstructorID]}, nil
}

// Save creates a batch when id is nil, otherwise merges the editable fields
// into the existing batch. Admin only.
func (s *BatchService) Save(ctx context.Context, claims *models.JWTClaims, req SaveBatchRequest, id *int) (*models.Batch, error) {
	action := ActionBatchCreate
	if id != nil {
		action = ActionBatchUpdate
	}
	if err := s.authz.Authorize(claims.Role, action); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	if _, err := s.store.UserByID(req.InstructorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	color := req.Color
	if color == "" && id == nil {
		color = models.BatchColors[len(s.store.Batches())%len(models.BatchColors)]
	}

	draft := models.BatchDraft{
		Name:          req.Name,
		InstructorID:  req.InstructorID,
		Schedule:      req.Schedule,
		TotalSessions: req.TotalSessions,
		Color:         color,
		StartDate:     req.StartDate,
	}

	batch, err := s.store.SaveBatch(draft, id, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save batch")
	}

	s.logger.Info("batch saved", zap.Int("batch_id", batch.ID), zap.String("name", batch.Name))
	return batch, nil
}

// Delete removes a batch and all of its sessions. Admin only.
func (s *BatchService) Delete(ctx context.Context, claims *models.JWTClaims, id int) error {
	if err := s.authz.Authorize(claims.Role, ActionBatchDelete); err != nil {
		return err
	}
	if err := s.store.DeleteBatch(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch")
	}
	s.logger.Info("batch deleted", zap.Int("batch_id", id))
	return nil
}

func (s *BatchService) instructorNames() map[int]string {
	names := make(map[int]string)
	for _, u := range s.store.Users() {
		names[u.ID] = u.Name
	}
	return names
}
