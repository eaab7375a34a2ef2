package models

// AttendanceStatus represents one student's status for one session.
type AttendanceStatus string

const (
	StatusPresent  AttendanceStatus = "Present"
	StatusAbsent   AttendanceStatus = "Absent"
	StatusLate     AttendanceStatus = "Late"
	StatusUnmarked AttendanceStatus = "Unmarked"
)

// Valid returns true when the status is a supported value. Consumers must
// reject anything else; there is no silent default.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusUnmarked:
		return true
	default:
		return false
	}
}

// AttendanceRecord holds one student's status for one session.
type AttendanceRecord struct {
	StudentID int              `json:"studentId"`
	Status    AttendanceStatus `json:"status"`
}
