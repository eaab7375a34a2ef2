// Package store owns the authoritative in-memory collections. Every mutation
// is a single atomic operation under one mutex, which is the only
// serialization point in the process; services never touch entity state
// directly and reads always return copies.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danceflow/attendance-api/internal/models"
)

// Sentinel errors translated into the HTTP error taxonomy by services.
var (
	ErrNotFound        = errors.New("store: not found")
	ErrSessionCapacity = errors.New("store: batch session capacity reached")
)

// Snapshot is the injected initial state.
type Snapshot struct {
	Users    []models.User
	Students []models.Student
	Batches  []models.Batch
	Sessions []models.Session
}

// Store holds the live collections.
type Store struct {
	mu       sync.Mutex
	users    []models.User
	students []models.Student
	batches  []models.Batch
	sessions []models.Session

	// High-water marks for id allocation. Ids are monotonic and never
	// reused, even after deletions.
	lastStudentID int
	lastBatchID   int

	now func() time.Time
}

// Option customises store construction.
type Option func(*Store)

// WithClock injects the time source used for session ids and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New builds a store seeded from the snapshot.
func New(snap Snapshot, opts ...Option) *Store {
	s := &Store{
		users:    append([]models.User(nil), snap.Users...),
		students: append([]models.Student(nil), snap.Students...),
		now:      time.Now,
	}
	s.batches = make([]models.Batch, 0, len(snap.Batches))
	for _, b := range snap.Batches {
		s.batches = append(s.batches, cloneBatch(b))
	}
	s.sessions = make([]models.Session, 0, len(snap.Sessions))
	for _, sess := range snap.Sessions {
		s.sessions = append(s.sessions, cloneSession(sess))
	}
	for _, st := range s.students {
		if st.ID > s.lastStudentID {
			s.lastStudentID = st.ID
		}
	}
	for _, b := range s.batches {
		if b.ID > s.lastBatchID {
			s.lastBatchID = b.ID
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Users returns a copy of all users.
func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.users...)
}

// UserByID finds a user by id.
func (s *Store) UserByID(id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// UserByUsername finds a user by exact, case-sensitive username.
func (s *Store) UserByUsername(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// Students returns a copy of the global student registry.
func (s *Store) Students() []models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Student(nil), s.students...)
}

// StudentsByBatch returns the batch roster in enrollment order.
func (s *Store) StudentsByBatch(batchID int) ([]models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.findBatch(batchID)
	if batch == nil {
		return nil, ErrNotFound
	}
	byID := make(map[int]models.Student, len(s.students))
	for _, st := range s.students {
		byID[st.ID] = st
	}
	roster := make([]models.Student, 0, len(batch.StudentIDs))
	for _, id := range batch.StudentIDs {
		if st, ok := byID[id]; ok {
			roster = append(roster, st)
		}
	}
	return roster, nil
}

// Batches returns a deep copy of all batches.
func (s *Store) Batches() []models.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, cloneBatch(b))
	}
	return out
}

// BatchByID finds a batch by id.
func (s *Store) BatchByID(id int) (*models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.findBatch(id)
	if batch == nil {
		return nil, ErrNotFound
	}
	copied := cloneBatch(*batch)
	return &copied, nil
}

// SessionByID finds a session by id.
func (s *Store) SessionByID(id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			copied := cloneSession(sess)
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// Sessions returns a deep copy of every session.
func (s *Store) Sessions() []models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, cloneSession(sess))
	}
	return out
}

// SessionsByBatch returns the batch's sessions in creation order.
func (s *Store) SessionsByBatch(batchID int) []models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, sess := range s.sessions {
		if sess.BatchID == batchID {
			out = append(out, cloneSession(sess))
		}
	}
	return out
}

// AddStudentToBatch registers a new student globally and enrolls them in the
// batch. Sessions of the batch that are still fully unmarked get an Unmarked
// record appended; sessions with any recorded status keep their history
// untouched.
func (s *Store) AddStudentToBatch(batchID int, name string) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.findBatch(batchID)
	if batch == nil {
		return nil, ErrNotFound
	}

	s.lastStudentID++
	student := models.Student{
		ID:     s.lastStudentID,
		Name:   name,
		Avatar: fmt.Sprintf("https://i.pravatar.cc/150?u=%d", s.lastStudentID),
	}
	s.students = append(s.students, student)
	batch.StudentIDs = append(batch.StudentIDs, student.ID)

	for i := range s.sessions {
		sess := &s.sessions[i]
		if sess.BatchID == batchID && sess.FullyUnmarked() {
			sess.Attendance = append(sess.Attendance, models.AttendanceRecord{
				StudentID: student.ID,
				Status:    models.StatusUnmarked,
			})
		}
	}

	copied := student
	return &copied, nil
}

// RemoveStudentFromBatch drops the student from the batch roster. Attendance
// records are stripped only from sessions that are still fully unmarked; any
// session with recorded statuses keeps the student's history even though they
// are no longer enrolled. The global Student record always survives.
func (s *Store) RemoveStudentFromBatch(batchID, studentID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.findBatch(batchID)
	if batch == nil {
		return ErrNotFound
	}

	roster := batch.StudentIDs[:0]
	for _, id := range batch.StudentIDs {
		if id != studentID {
			roster = append(roster, id)
		}
	}
	batch.StudentIDs = roster

	for i := range s.sessions {
		sess := &s.sessions[i]
		if sess.BatchID != batchID || !sess.FullyUnmarked() {
			continue
		}
		records := sess.Attendance[:0]
		for _, rec := range sess.Attendance {
			if rec.StudentID != studentID {
				records = append(records, rec)
			}
		}
		sess.Attendance = records
	}
	return nil
}

// CreateSession starts the next class for a batch. The date defaults to today
// when empty. Fails with ErrSessionCapacity once the batch cap is reached; on
// failure nothing is mutated.
func (s *Store) CreateSession(batchID int, date string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.findBatch(batchID)
	if batch == nil {
		return nil, ErrNotFound
	}

	count := 0
	for _, sess := range s.sessions {
		if sess.BatchID == batchID {
			count++
		}
	}
	if count >= batch.TotalSessions {
		return nil, ErrSessionCapacity
	}

	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	session := models.Session{
		ID:          fmt.Sprintf("session-%d-%d", batchID, s.now().UnixMilli()),
		BatchID:     batchID,
		ClassNumber: count + 1,
		Date:        date,
		Attendance:  make([]models.AttendanceRecord, 0, len(batch.StudentIDs)),
	}
	for _, studentID := range batch.StudentIDs {
		session.Attendance = append(session.Attendance, models.AttendanceRecord{
			StudentID: studentID,
			Status:    models.StatusUnmarked,
		})
	}
	s.sessions = append(s.sessions, cloneSession(session))
	return &session, nil
}

// ReplaceSession swaps the stored session for the given one in a single
// atomic replace-by-id.
func (s *Store) ReplaceSession(session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == session.ID {
			s.sessions[i] = cloneSession(session)
			return nil
		}
	}
	return ErrNotFound
}

// SaveBatch creates a batch when id is nil, otherwise merges the draft into
// the existing batch preserving id, roster and creator.
func (s *Store) SaveBatch(draft models.BatchDraft, id *int, createdBy int) (*models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != nil {
		batch := s.findBatch(*id)
		if batch == nil {
			return nil, ErrNotFound
		}
		batch.Name = draft.Name
		batch.InstructorID = draft.InstructorID
		batch.Schedule = draft.Schedule
		batch.TotalSessions = draft.TotalSessions
		batch.Color = draft.Color
		batch.StartDate = draft.StartDate
		copied := cloneBatch(*batch)
		return &copied, nil
	}

	s.lastBatchID++
	batch := models.Batch{
		ID:            s.lastBatchID,
		Name:          draft.Name,
		InstructorID:  draft.InstructorID,
		Schedule:      draft.Schedule,
		StudentIDs:    []int{},
		TotalSessions: draft.TotalSessions,
		Color:         draft.Color,
		StartDate:     draft.StartDate,
		CreatedBy:     createdBy,
	}
	s.batches = append(s.batches, cloneBatch(batch))
	return &batch, nil
}

// DeleteBatch removes the batch and cascades to all of its sessions.
func (s *Store) DeleteBatch(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	batches := s.batches[:0]
	for _, b := range s.batches {
		if b.ID == id {
			found = true
			continue
		}
		batches = append(batches, b)
	}
	if !found {
		return ErrNotFound
	}
	s.batches = batches

	sessions := s.sessions[:0]
	for _, sess := range s.sessions {
		if sess.BatchID != id {
			sessions = append(sessions, sess)
		}
	}
	s.sessions = sessions
	return nil
}

// DeleteSession removes a single session.
func (s *Store) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// UpdateSessionDate rewrites a session's date.
func (s *Store) UpdateSessionDate(id, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions[i].Date = date
			return nil
		}
	}
	return ErrNotFound
}

// findBatch returns a pointer into the live slice; callers hold the lock.
func (s *Store) findBatch(id int) *models.Batch {
	for i := range s.batches {
		if s.batches[i].ID == id {
			return &s.batches[i]
		}
	}
	return nil
}

func cloneBatch(b models.Batch) models.Batch {
	b.StudentIDs = append([]int(nil), b.StudentIDs...)
	return b
}

func cloneSession(s models.Session) models.Session {
	s.Attendance = append([]models.AttendanceRecord(nil), s.Attendance...)
	return s
}
