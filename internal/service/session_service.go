package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/danceflow/attendance-api/internal/models"
	"github.com/danceflow/attendance-api/internal/sheets"
	"github.com/danceflow/attendance-api/internal/store"
	"github.com/danceflow/attendance-api/pkg/config"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
	"github.com/danceflow/attendance-api/pkg/jobs"
)

type sessionStore interface {
	BatchByID(id int) (*models.Batch, error)
	SessionByID(id string) (*models.Session, error)
	SessionsByBatch(batchID int) []models.Session
	CreateSession(batchID int, date string) (*models.Session, error)
	ReplaceSession(session models.Session) error
	DeleteSession(id string) error
	UpdateSessionDate(id, date string) error
	Students() []models.Student
}

type sheetSubmitter interface {
	Submit(ctx context.Context, payload sheets.SavePayload) (*sheets.Ack, error)
	Simulated() bool
}

type syncMetrics interface {
	RecordSheetSync(outcome string)
}

// SaveAttendanceRequest replaces a session's attendance wholesale, optionally
// rewriting its date at the same time.
type SaveAttendanceRequest struct {
	Date       string                    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Attendance []models.AttendanceRecord `json:"attendance" validate:"required"`
}

// RescheduleSessionRequest moves a session to a new date.
type RescheduleSessionRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// SessionListResponse carries a batch's sessions plus the derived per-slot
// classification up to the batch cap.
type SessionListResponse struct {
	Sessions []models.Session     `json:"sessions"`
	Slots    []models.SessionSlot `json:"slots"`
}

// SaveAttendanceResponse returns the committed session and the sync state at
// the moment of the save.
type SaveAttendanceResponse struct {
	Session models.Session   `json:"session"`
	Sync    models.SyncState `json:"sync"`
}

type syncJob struct {
	sessionID string
	seq       uint64
	payload   sheets.SavePayload
}

// SessionService owns the session lifecycle and the sheet sync pipeline.
// Saves commit locally first and push to the sheet in the background; a
// failed push never rolls the local commit back. Per-session save sequence
// numbers discard completions from superseded saves.
type SessionService struct {
	store     sessionStore
	sheets    sheetSubmitter
	authz     *Policy
	validator *validator.Validate
	logger    *zap.Logger
	metrics   syncMetrics
	queue     *jobs.Queue

	mu        sync.Mutex
	saveSeq   map[string]uint64
	syncState map[string]models.SyncState
}

// NewSessionService constructs SessionService with its own sync dispatcher.
// Call Start before saving and Stop on shutdown.
func NewSessionService(st sessionStore, sheetClient sheetSubmitter, authz *Policy, validate *validator.Validate, logger *zap.Logger, metrics syncMetrics, syncCfg config.SyncConfig) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionService{
		store:     st,
		sheets:    sheetClient,
		authz:     authz,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		saveSeq:   make(map[string]uint64),
		syncState: make(map[string]models.SyncState),
	}
	s.queue = jobs.NewQueue("sheet-sync", s.handleSyncJob, jobs.QueueConfig{
		Workers:    syncCfg.Workers,
		BufferSize: syncCfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the background sync workers.
func (s *SessionService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the sync workers.
func (s *SessionService) Stop() {
	s.queue.Stop()
}

// ListForBatch returns the batch's sessions ascending by class number plus
// the slot classification for every class up to the batch cap: Upcoming when
// the slot has no session, Pending while fully unmarked, Completed once any
// status is recorded.
func (s *SessionService) ListForBatch(ctx context.Context, batchID int) (*SessionListResponse, error) {
	batch, err := s.store.BatchByID(batchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	sessions := s.store.SessionsByBatch(batchID)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].ClassNumber < sessions[j].ClassNumber
	})

	byClass := make(map[int]*models.Session, len(sessions))
	for i := range sessions {
		byClass[sessions[i].ClassNumber] = &sessions[i]
	}
	slots := make([]models.SessionSlot, 0, batch.TotalSessions)
	for n := 1; n <= batch.TotalSessions; n++ {
		slot := models.SessionSlot{ClassNumber: n, Status: models.ClassifySlot(byClass[n])}
		if sess := byClass[n]; sess != nil {
			slot.SessionID = sess.ID
		}
		slots = append(slots, slot)
	}

	return &SessionListResponse{Sessions: sessions, Slots: slots}, nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.store.SessionByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// StartClass creates the next session for the batch, dated today, with one
// Unmarked record per enrolled student. Fails once the batch cap is reached.
func (s *SessionService) StartClass(ctx context.Context, claims *models.JWTClaims, batchID int) (*models.Session, error) {
	if err := s.authz.Authorize(claims.Role, ActionSessionStart); err != nil {
		return nil, err
	}
	session, err := s.store.CreateSession(batchID, "")
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSessionCapacity):
			return nil, appErrors.Clone(appErrors.ErrSessionCapacity, "")
		case errors.Is(err, store.ErrNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start class")
		}
	}
	s.logger.Info("class started",
		zap.Int("batch_id", batchID),
		zap.Int("class_number", session.ClassNumber),
		zap.String("session_id", session.ID))
	return session, nil
}

// SaveAttendance commits the attendance locally, then pushes it to the sheet
// in the background. The local commit is unconditional; sync is advisory and
// its outcome lands in the session's sync state.
func (s *SessionService) SaveAttendance(ctx context.Context, claims *models.JWTClaims, sessionID string, req SaveAttendanceRequest) (*SaveAttendanceResponse, error) {
	if err := s.authz.Authorize(claims.Role, ActionSessionSave); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if err := s.validateRecords(req.Attendance); err != nil {
		return nil, err
	}

	session, err := s.store.SessionByID(sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	batch, err := s.store.BatchByID(session.BatchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch for session")
	}

	updated := *session
	updated.Attendance = append([]models.AttendanceRecord(nil), req.Attendance...)
	if req.Date != "" {
		updated.Date = req.Date
	}

	// Optimistic local commit before any remote work.
	if err := s.store.ReplaceSession(updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance")
	}

	seq := s.beginSave(sessionID)
	job := syncJob{
		sessionID: sessionID,
		seq:       seq,
		payload:   s.buildPayload(batch, updated),
	}
	if err := s.queue.Enqueue(jobs.Job{Type: "sheet-sync", Payload: job}); err != nil {
		s.logger.Error("failed to enqueue sheet sync", zap.String("session_id", sessionID), zap.Error(err))
		s.recordSyncResult(sessionID, seq, nil, appErrors.Clone(appErrors.ErrSheetNetwork, "sync dispatcher unavailable"))
	}

	return &SaveAttendanceResponse{Session: updated, Sync: s.SyncState(sessionID)}, nil
}

// SyncState reports the outcome of the most recent save for the session.
func (s *SessionService) SyncState(sessionID string) models.SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.syncState[sessionID]; ok {
		return state
	}
	return models.SyncState{Status: models.SyncIdle}
}

// Delete removes one session. Whether this requires the admin role is a
// policy decision; see NewPolicy.
func (s *SessionService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if err := s.authz.Authorize(claims.Role, ActionSessionDelete); err != nil {
		return err
	}
	if err := s.store.DeleteSession(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	s.mu.Lock()
	delete(s.saveSeq, id)
	delete(s.syncState, id)
	s.mu.Unlock()
	s.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// Reschedule rewrites a session's date.
func (s *SessionService) Reschedule(ctx context.Context, claims *models.JWTClaims, id string, req RescheduleSessionRequest) error {
	if err := s.authz.Authorize(claims.Role, ActionSessionReschedule); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}
	if err := s.store.UpdateSessionDate(id, req.Date); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reschedule session")
	}
	return nil
}

// validateRecords rejects unknown statuses and duplicate students. Unknown
// enum values are a hard error, never coerced.
func (s *SessionService) validateRecords(records []models.AttendanceRecord) error {
	seen := make(map[int]struct{}, len(records))
	for _, rec := range records {
		if !rec.Status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attendance status %q", rec.Status))
		}
		if _, dup := seen[rec.StudentID]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate attendance record for student %d", rec.StudentID))
		}
		seen[rec.StudentID] = struct{}{}
	}
	return nil
}

// buildPayload projects the session into the sheet wire format, attaching
// the (id, name) of every student referenced by the attendance list.
func (s *SessionService) buildPayload(batch *models.Batch, session models.Session) sheets.SavePayload {
	referenced := make(map[int]struct{}, len(session.Attendance))
	for _, rec := range session.Attendance {
		referenced[rec.StudentID] = struct{}{}
	}
	var refs []models.StudentRef
	for _, student := range s.store.Students() {
		if _, ok := referenced[student.ID]; ok {
			refs = append(refs, student.Ref())
		}
	}
	return sheets.SavePayload{
		BatchName:   batch.Name,
		SessionDate: session.Date,
		ClassNumber: session.ClassNumber,
		Attendance:  session.Attendance,
		Students:    refs,
	}
}

// beginSave bumps the session's save sequence and marks it saving.
func (s *SessionService) beginSave(sessionID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveSeq[sessionID]++
	s.syncState[sessionID] = models.SyncState{Status: models.SyncSaving}
	return s.saveSeq[sessionID]
}

// handleSyncJob runs on the dispatcher workers.
func (s *SessionService) handleSyncJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(syncJob)
	if !ok {
		return fmt.Errorf("unexpected sync payload type %T", job.Payload)
	}
	ack, err := s.sheets.Submit(ctx, payload.payload)
	s.recordSyncResult(payload.sessionID, payload.seq, ack, err)
	return nil
}

// recordSyncResult applies a sync completion unless a newer save has since
// started for the session, in which case the stale result is discarded.
func (s *SessionService) recordSyncResult(sessionID string, seq uint64, ack *sheets.Ack, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.saveSeq[sessionID]; seq != current {
		s.logger.Debug("discarding stale sync completion",
			zap.String("session_id", sessionID),
			zap.Uint64("seq", seq),
			zap.Uint64("current", current))
		s.observeSync("stale")
		return
	}

	if err != nil {
		appErr := appErrors.FromError(err)
		s.syncState[sessionID] = models.SyncState{Status: models.SyncError, Message: appErr.Message}
		outcome := "rejected"
		if appErr.Code == appErrors.ErrSheetNetwork.Code {
			outcome = "network_error"
		}
		s.observeSync(outcome)
		s.logger.Warn("sheet sync failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	message := ""
	if ack != nil {
		message = ack.Message
	}
	s.syncState[sessionID] = models.SyncState{Status: models.SyncSaved, Message: message}
	s.observeSync("saved")
}

func (s *SessionService) observeSync(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSheetSync(outcome)
	}
}
