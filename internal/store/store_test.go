package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/danceflow/attendance-api/internal/models"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Users: []models.User{
			{ID: 1, Username: "admin", Name: "Admin", Role: models.RoleAdmin},
			{ID: 2, Username: "neha", Name: "Neha", Role: models.RoleTeacher},
		},
		Students: []models.Student{
			{ID: 1, Name: "Alice"},
			{ID: 2, Name: "Bob"},
			{ID: 3, Name: "Charlie"},
		},
		Batches: []models.Batch{
			{ID: 1, Name: "Hip-Hop", InstructorID: 2, StudentIDs: []int{1, 2}, TotalSessions: 2, CreatedBy: 1},
			{ID: 2, Name: "Salsa", InstructorID: 2, StudentIDs: []int{3}, TotalSessions: 4, CreatedBy: 1},
		},
		Sessions: []models.Session{
			{
				ID: "session-1-1", BatchID: 1, ClassNumber: 1, Date: "2026-08-01",
				Attendance: []models.AttendanceRecord{
					{StudentID: 1, Status: models.StatusPresent},
					{StudentID: 2, Status: models.StatusAbsent},
				},
			},
		},
	}
}

func TestDefaultSnapshotSeed(t *testing.T) {
	snap := DefaultSnapshot()

	require.Len(t, snap.Users, 3)
	require.Len(t, snap.Students, 12)
	require.Len(t, snap.Batches, 4)
	require.Len(t, snap.Sessions, 3)

	for _, u := range snap.Users {
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(DemoPassword)))
	}

	// Every roster entry resolves to a registered student.
	known := make(map[int]bool)
	for _, st := range snap.Students {
		known[st.ID] = true
	}
	for _, b := range snap.Batches {
		for _, id := range b.StudentIDs {
			assert.True(t, known[id], "batch %d references unknown student %d", b.ID, id)
		}
	}

	// Session session-1-2 is the only fully unmarked one.
	for _, sess := range snap.Sessions {
		if sess.ID == "session-1-2" {
			assert.True(t, sess.FullyUnmarked())
		} else {
			assert.False(t, sess.FullyUnmarked())
		}
	}
}

func TestAddStudentAllocatesMonotonicIDs(t *testing.T) {
	s := New(testSnapshot())

	created, err := s.AddStudentToBatch(1, "Diana")
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, "https://i.pravatar.cc/150?u=4", created.Avatar)

	batch, err := s.BatchByID(1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, batch.StudentIDs)
}

func TestStudentIDsNeverReused(t *testing.T) {
	s := New(testSnapshot())

	created, err := s.AddStudentToBatch(1, "Diana")
	require.NoError(t, err)
	require.Equal(t, 4, created.ID)

	require.NoError(t, s.RemoveStudentFromBatch(1, 4))

	next, err := s.AddStudentToBatch(1, "Ethan")
	require.NoError(t, err)
	assert.Equal(t, 5, next.ID)
}

func TestBatchIDsNeverReused(t *testing.T) {
	s := New(testSnapshot())

	require.NoError(t, s.DeleteBatch(2))

	draft := models.BatchDraft{Name: "Ballet", InstructorID: 2, TotalSessions: 4}
	batch, err := s.SaveBatch(draft, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, batch.ID)
	assert.Equal(t, []int{}, batch.StudentIDs)
	assert.Equal(t, 1, batch.CreatedBy)
}

func TestAddStudentBackfillsOnlyUnmarkedSessions(t *testing.T) {
	s := New(testSnapshot())

	// One marked session exists; add an unmarked one beside it.
	sess, err := s.CreateSession(1, "2026-08-02")
	require.NoError(t, err)
	require.True(t, sess.FullyUnmarked())

	created, err := s.AddStudentToBatch(1, "Diana")
	require.NoError(t, err)

	marked, err := s.SessionByID("session-1-1")
	require.NoError(t, err)
	assert.Len(t, marked.Attendance, 2, "marked session keeps its history")

	pending, err := s.SessionByID(sess.ID)
	require.NoError(t, err)
	require.Len(t, pending.Attendance, 3)
	assert.Equal(t, created.ID, pending.Attendance[2].StudentID)
	assert.Equal(t, models.StatusUnmarked, pending.Attendance[2].Status)
}

func TestRemoveStudentKeepsMarkedHistory(t *testing.T) {
	s := New(testSnapshot())

	sess, err := s.CreateSession(1, "2026-08-02")
	require.NoError(t, err)

	require.NoError(t, s.RemoveStudentFromBatch(1, 1))

	batch, err := s.BatchByID(1)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, batch.StudentIDs)

	// The global registry never loses the student.
	assert.Len(t, s.Students(), 3)

	marked, err := s.SessionByID("session-1-1")
	require.NoError(t, err)
	assert.Len(t, marked.Attendance, 2, "recorded statuses survive removal")

	pending, err := s.SessionByID(sess.ID)
	require.NoError(t, err)
	require.Len(t, pending.Attendance, 1)
	assert.Equal(t, 2, pending.Attendance[0].StudentID)
}

func TestCreateSessionCapacityGate(t *testing.T) {
	s := New(testSnapshot())

	sess, err := s.CreateSession(1, "")
	require.NoError(t, err)
	assert.Equal(t, 2, sess.ClassNumber)

	before := s.SessionsByBatch(1)
	_, err = s.CreateSession(1, "")
	require.ErrorIs(t, err, ErrSessionCapacity)
	assert.Equal(t, before, s.SessionsByBatch(1), "failed create mutates nothing")
}

func TestCreateSessionDefaults(t *testing.T) {
	fixed := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	s := New(testSnapshot(), WithClock(func() time.Time { return fixed }))

	sess, err := s.CreateSession(2, "")
	require.NoError(t, err)
	assert.Equal(t, "session-2-1787999400000", sess.ID)
	assert.Equal(t, "2026-08-29", sess.Date)
	require.Len(t, sess.Attendance, 1)
	assert.Equal(t, models.StatusUnmarked, sess.Attendance[0].Status)
}

func TestSaveBatchMergePreservesIdentity(t *testing.T) {
	s := New(testSnapshot())

	id := 1
	draft := models.BatchDraft{Name: "Hip-Hop Advanced", InstructorID: 2, Schedule: "Tue", TotalSessions: 10, Color: "#ef4444", StartDate: "2026-09-01"}
	updated, err := s.SaveBatch(draft, &id, 99)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "Hip-Hop Advanced", updated.Name)
	assert.Equal(t, 10, updated.TotalSessions)
	assert.Equal(t, []int{1, 2}, updated.StudentIDs, "roster survives edits")
	assert.Equal(t, 1, updated.CreatedBy, "creator survives edits")
}

func TestDeleteBatchCascadesSessions(t *testing.T) {
	s := New(testSnapshot())

	require.NoError(t, s.DeleteBatch(1))
	assert.Empty(t, s.SessionsByBatch(1))
	assert.Empty(t, s.Sessions())
	_, err := s.SessionByID("session-1-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Unrelated data untouched.
	_, err = s.BatchByID(2)
	assert.NoError(t, err)
}

func TestReadsReturnIsolatedCopies(t *testing.T) {
	s := New(testSnapshot())

	batch, err := s.BatchByID(1)
	require.NoError(t, err)
	batch.StudentIDs[0] = 999
	batch.Name = "mutated"

	fresh, err := s.BatchByID(1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, fresh.StudentIDs)
	assert.Equal(t, "Hip-Hop", fresh.Name)

	sess, err := s.SessionByID("session-1-1")
	require.NoError(t, err)
	sess.Attendance[0].Status = models.StatusLate

	freshSess, err := s.SessionByID("session-1-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, freshSess.Attendance[0].Status)
}

func TestReplaceSession(t *testing.T) {
	s := New(testSnapshot())

	sess, err := s.SessionByID("session-1-1")
	require.NoError(t, err)
	sess.Attendance[0].Status = models.StatusLate
	require.NoError(t, s.ReplaceSession(*sess))

	stored, err := s.SessionByID("session-1-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusLate, stored.Attendance[0].Status)

	sess.ID = "missing"
	assert.ErrorIs(t, s.ReplaceSession(*sess), ErrNotFound)
}

func TestUpdateSessionDate(t *testing.T) {
	s := New(testSnapshot())

	require.NoError(t, s.UpdateSessionDate("session-1-1", "2026-09-15"))
	sess, err := s.SessionByID("session-1-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", sess.Date)

	assert.ErrorIs(t, s.UpdateSessionDate("missing", "2026-09-15"), ErrNotFound)
}

func TestStudentsByBatchRosterOrder(t *testing.T) {
	s := New(testSnapshot())

	_, err := s.AddStudentToBatch(2, "Diana")
	require.NoError(t, err)

	roster, err := s.StudentsByBatch(2)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Charlie", roster[0].Name)
	assert.Equal(t, "Diana", roster[1].Name)
}
