package store

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danceflow/attendance-api/internal/models"
)

// DemoPassword is shared by every seed account. This is a single-operator
// demo tool; a real credential store is an explicit non-goal.
const DemoPassword = "dance123"

// DefaultSnapshot reproduces the studio's demo dataset: three accounts, a
// dozen students, four batches and a few sessions in mixed states.
func DefaultSnapshot() Snapshot {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("seed: hash demo password: %v", err))
	}
	passwordHash := string(hash)

	users := []models.User{
		{ID: 1, Username: "admin", Name: "Admin User", Role: models.RoleAdmin, PasswordHash: passwordHash},
		{ID: 2, Username: "neha", Name: "Neha", Role: models.RoleTeacher, PasswordHash: passwordHash},
		{ID: 3, Username: "raj", Name: "Raj", Role: models.RoleTeacher, PasswordHash: passwordHash},
	}

	studentNames := []string{
		"Alice Johnson", "Bob Williams", "Charlie Brown", "Diana Miller",
		"Ethan Davis", "Fiona Garcia", "George Rodriguez", "Hannah Wilson",
		"Ian Martinez", "Jane Anderson", "Kyle Taylor", "Laura Moore",
	}
	students := make([]models.Student, 0, len(studentNames))
	for i, name := range studentNames {
		id := i + 1
		students = append(students, models.Student{
			ID:     id,
			Name:   name,
			Avatar: fmt.Sprintf("https://i.pravatar.cc/150?u=%d", id),
		})
	}

	today := time.Now()
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format("2006-01-02")
	}

	batches := []models.Batch{
		{
			ID: 1, Name: "Hip-Hop Beginners", InstructorID: 2,
			Schedule: "Mon, Wed - 6:00 PM", StudentIDs: []int{1, 2, 3, 4, 9, 11},
			TotalSessions: 8, Color: models.BatchColors[0], StartDate: day(-3), CreatedBy: 1,
		},
		{
			ID: 2, Name: "Contemporary Flow", InstructorID: 3,
			Schedule: "Tue, Thu - 7:30 PM", StudentIDs: []int{5, 6, 7, 8, 10, 12},
			TotalSessions: 12, Color: models.BatchColors[1], StartDate: day(-3), CreatedBy: 1,
		},
		{
			ID: 3, Name: "Salsa Fusion", InstructorID: 2,
			Schedule: "Fri - 8:00 PM", StudentIDs: []int{1, 3, 5, 7, 9, 11},
			TotalSessions: 8, Color: models.BatchColors[2], StartDate: day(0), CreatedBy: 1,
		},
		{
			ID: 4, Name: "Ballet Basics", InstructorID: 3,
			Schedule: "Sat - 10:00 AM", StudentIDs: []int{2, 4, 6, 8, 10, 12},
			TotalSessions: 12, Color: models.BatchColors[3], StartDate: day(0), CreatedBy: 1,
		},
	}

	unmarked := func(studentIDs ...int) []models.AttendanceRecord {
		records := make([]models.AttendanceRecord, 0, len(studentIDs))
		for _, id := range studentIDs {
			records = append(records, models.AttendanceRecord{StudentID: id, Status: models.StatusUnmarked})
		}
		return records
	}

	sessions := []models.Session{
		{
			ID: "session-1-1", BatchID: 1, ClassNumber: 1, Date: day(-2),
			Attendance: []models.AttendanceRecord{
				{StudentID: 1, Status: models.StatusPresent},
				{StudentID: 2, Status: models.StatusPresent},
				{StudentID: 3, Status: models.StatusAbsent},
				{StudentID: 4, Status: models.StatusPresent},
				{StudentID: 9, Status: models.StatusLate},
				{StudentID: 11, Status: models.StatusPresent},
			},
		},
		{
			ID: "session-1-2", BatchID: 1, ClassNumber: 2, Date: day(-1),
			Attendance: unmarked(1, 2, 3, 4, 9, 11),
		},
		{
			ID: "session-2-1", BatchID: 2, ClassNumber: 1, Date: day(-1),
			Attendance: []models.AttendanceRecord{
				{StudentID: 5, Status: models.StatusPresent},
				{StudentID: 6, Status: models.StatusPresent},
				{StudentID: 7, Status: models.StatusPresent},
				{StudentID: 8, Status: models.StatusPresent},
				{StudentID: 10, Status: models.StatusAbsent},
				{StudentID: 12, Status: models.StatusPresent},
			},
		},
	}

	return Snapshot{Users: users, Students: students, Batches: batches, Sessions: sessions}
}
