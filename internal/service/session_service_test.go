package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danceflow/attendance-api/internal/models"
	"github.com/danceflow/attendance-api/internal/sheets"
	"github.com/danceflow/attendance-api/internal/store"
	"github.com/danceflow/attendance-api/pkg/config"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
)

type fakeSheet struct {
	mu      sync.Mutex
	calls   []sheets.SavePayload
	ack     *sheets.Ack
	err     error
	release chan struct{}
}

func (f *fakeSheet) Submit(ctx context.Context, payload sheets.SavePayload) (*sheets.Ack, error) {
	f.mu.Lock()
	f.calls = append(f.calls, payload)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.ack, f.err
}

func (f *fakeSheet) Simulated() bool { return true }

func (f *fakeSheet) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testSessionService(t *testing.T, sheet *fakeSheet) (*SessionService, *store.Store) {
	t.Helper()
	if sheet.ack == nil && sheet.err == nil {
		sheet.ack = &sheets.Ack{Status: "success", Message: "Attendance saved"}
	}
	st := store.New(store.DefaultSnapshot())
	svc := NewSessionService(st, sheet, NewPolicy(false), nil, nil, nil, config.SyncConfig{Workers: 1})
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		cancel()
		svc.Stop()
	})
	return svc, st
}

func TestStartClassCapacityGate(t *testing.T) {
	sheet := &fakeSheet{}
	svc, st := testSessionService(t, sheet)
	ctx := context.Background()

	// Batch 1 caps at 8 and already holds 2 sessions.
	for i := 0; i < 6; i++ {
		_, err := svc.StartClass(ctx, teacherClaims(2), 1)
		require.NoError(t, err)
	}

	before := st.SessionsByBatch(1)
	_, err := svc.StartClass(ctx, teacherClaims(2), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionCapacity.Code, appErrors.FromError(err).Code)
	assert.Equal(t, before, st.SessionsByBatch(1))
}

func TestStartClassSeedsUnmarkedRoster(t *testing.T) {
	sheet := &fakeSheet{}
	svc, _ := testSessionService(t, sheet)

	session, err := svc.StartClass(context.Background(), adminClaims(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, session.ClassNumber)
	require.Len(t, session.Attendance, 6)
	for _, rec := range session.Attendance {
		assert.Equal(t, models.StatusUnmarked, rec.Status)
	}
}

func TestListForBatchSlotProgression(t *testing.T) {
	sheet := &fakeSheet{}
	svc, _ := testSessionService(t, sheet)

	res, err := svc.ListForBatch(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, res.Sessions, 2)
	require.Len(t, res.Slots, 8)

	assert.Equal(t, models.SessionCompleted, res.Slots[0].Status)
	assert.Equal(t, "session-1-1", res.Slots[0].SessionID)
	assert.Equal(t, models.SessionPending, res.Slots[1].Status)
	for _, slot := range res.Slots[2:] {
		assert.Equal(t, models.SessionUpcoming, slot.Status)
		assert.Empty(t, slot.SessionID)
	}
}

func TestSaveAttendanceCommitsBeforeSyncResolves(t *testing.T) {
	sheet := &fakeSheet{release: make(chan struct{})}
	svc, st := testSessionService(t, sheet)

	req := SaveAttendanceRequest{Attendance: []models.AttendanceRecord{
		{StudentID: 1, Status: models.StatusPresent},
		{StudentID: 2, Status: models.StatusLate},
	}}
	res, err := svc.SaveAttendance(context.Background(), teacherClaims(2), "session-1-2", req)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSaving, res.Sync.Status)

	// Local state is committed while the sheet push is still in flight.
	stored, err := st.SessionByID("session-1-2")
	require.NoError(t, err)
	require.Len(t, stored.Attendance, 2)
	assert.Equal(t, models.StatusLate, stored.Attendance[1].Status)

	close(sheet.release)
	require.Eventually(t, func() bool {
		return svc.SyncState("session-1-2").Status == models.SyncSaved
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Attendance saved", svc.SyncState("session-1-2").Message)
	assert.Equal(t, 1, sheet.callCount())
}

func TestSaveAttendanceSyncFailureKeepsLocalCommit(t *testing.T) {
	sheet := &fakeSheet{err: appErrors.Clone(appErrors.ErrSheetRejected, "Sheet not found")}
	svc, st := testSessionService(t, sheet)

	req := SaveAttendanceRequest{Attendance: []models.AttendanceRecord{
		{StudentID: 1, Status: models.StatusAbsent},
	}}
	_, err := svc.SaveAttendance(context.Background(), teacherClaims(2), "session-1-2", req)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return svc.SyncState("session-1-2").Status == models.SyncError
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Sheet not found", svc.SyncState("session-1-2").Message)

	stored, err := st.SessionByID("session-1-2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAbsent, stored.Attendance[0].Status)
}

func TestSaveAttendanceRejectsUnknownStatus(t *testing.T) {
	sheet := &fakeSheet{}
	svc, st := testSessionService(t, sheet)

	before, err := st.SessionByID("session-1-2")
	require.NoError(t, err)

	req := SaveAttendanceRequest{Attendance: []models.AttendanceRecord{
		{StudentID: 1, Status: models.AttendanceStatus("Excused")},
	}}
	_, err = svc.SaveAttendance(context.Background(), teacherClaims(2), "session-1-2", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	after, err := st.SessionByID("session-1-2")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, sheet.callCount())
}

func TestSaveAttendanceRejectsDuplicateStudent(t *testing.T) {
	sheet := &fakeSheet{}
	svc, _ := testSessionService(t, sheet)

	req := SaveAttendanceRequest{Attendance: []models.AttendanceRecord{
		{StudentID: 1, Status: models.StatusPresent},
		{StudentID: 1, Status: models.StatusAbsent},
	}}
	_, err := svc.SaveAttendance(context.Background(), teacherClaims(2), "session-1-2", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStaleSyncCompletionDiscarded(t *testing.T) {
	sheet := &fakeSheet{}
	svc, _ := testSessionService(t, sheet)

	first := svc.beginSave("session-1-2")
	second := svc.beginSave("session-1-2")

	svc.recordSyncResult("session-1-2", first, &sheets.Ack{Status: "success", Message: "old save"}, nil)
	assert.Equal(t, models.SyncSaving, svc.SyncState("session-1-2").Status, "stale completion is discarded")

	svc.recordSyncResult("session-1-2", second, &sheets.Ack{Status: "success", Message: "new save"}, nil)
	state := svc.SyncState("session-1-2")
	assert.Equal(t, models.SyncSaved, state.Status)
	assert.Equal(t, "new save", state.Message)
}

func TestSyncStateDefaultsToIdle(t *testing.T) {
	sheet := &fakeSheet{}
	svc, _ := testSessionService(t, sheet)

	assert.Equal(t, models.SyncIdle, svc.SyncState("session-1-1").Status)
}

func TestRescheduleValidatesDate(t *testing.T) {
	sheet := &fakeSheet{}
	svc, st := testSessionService(t, sheet)
	ctx := context.Background()

	err := svc.Reschedule(ctx, teacherClaims(2), "session-1-1", RescheduleSessionRequest{Date: "29-08-2026"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Reschedule(ctx, teacherClaims(2), "session-1-1", RescheduleSessionRequest{Date: "2026-09-15"}))
	sess, err := st.SessionByID("session-1-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", sess.Date)
}

func TestDeleteSessionPolicyFlag(t *testing.T) {
	st := store.New(store.DefaultSnapshot())
	sheet := &fakeSheet{ack: &sheets.Ack{Status: "success"}}
	svc := NewSessionService(st, sheet, NewPolicy(true), nil, nil, nil, config.SyncConfig{})

	err := svc.Delete(context.Background(), teacherClaims(2), "session-1-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), adminClaims(), "session-1-1"))
	_, err = st.SessionByID("session-1-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
