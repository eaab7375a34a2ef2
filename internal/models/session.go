package models

// Session is one concrete occurrence of a batch with per-student attendance.
// Dates are plain YYYY-MM-DD strings, matching the sheet wire format.
type Session struct {
	ID          string             `json:"id"`
	BatchID     int                `json:"batchId"`
	ClassNumber int                `json:"classNumber"`
	Date        string             `json:"date"`
	Attendance  []AttendanceRecord `json:"attendance"`
}

// FullyUnmarked reports whether no attendance has been recorded yet. An empty
// attendance list counts as fully unmarked.
func (s Session) FullyUnmarked() bool {
	for _, rec := range s.Attendance {
		if rec.Status != StatusUnmarked {
			return false
		}
	}
	return true
}

// SessionStatus classifies a class slot for display and gating.
type SessionStatus string

const (
	SessionUpcoming  SessionStatus = "Upcoming"
	SessionPending   SessionStatus = "Pending"
	SessionCompleted SessionStatus = "Completed"
)

// ClassifySlot derives the slot state: no session yet is Upcoming, a session
// with only Unmarked records is Pending, anything else is Completed. The
// progression is monotonic in normal operation; un-marking every record is a
// deliberate operator override, not a protocol violation.
func ClassifySlot(s *Session) SessionStatus {
	switch {
	case s == nil:
		return SessionUpcoming
	case s.FullyUnmarked():
		return SessionPending
	default:
		return SessionCompleted
	}
}

// SessionSlot pairs a class number with its derived status.
type SessionSlot struct {
	ClassNumber int           `json:"classNumber"`
	Status      SessionStatus `json:"status"`
	SessionID   string        `json:"sessionId,omitempty"`
}

// SyncStatus tracks the sheet push lifecycle for a session.
type SyncStatus string

const (
	SyncIdle   SyncStatus = "idle"
	SyncSaving SyncStatus = "saving"
	SyncSaved  SyncStatus = "saved"
	SyncError  SyncStatus = "error"
)

// SyncState is the user-visible outcome of the most recent save. A failed
// push never rolls back the local commit; the operator retries by saving
// again.
type SyncState struct {
	Status  SyncStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}
