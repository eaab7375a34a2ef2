package models

// Batch is a recurring class group with a fixed roster, schedule and a cap on
// how many sessions may be held.
type Batch struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	InstructorID  int    `json:"instructorId"`
	Schedule      string `json:"schedule"`
	StudentIDs    []int  `json:"studentIds"`
	TotalSessions int    `json:"totalSessions"`
	Color         string `json:"color"`
	StartDate     string `json:"startDate"`
	CreatedBy     int    `json:"createdBy"`
}

// BatchDraft carries the editable batch fields for create and update.
// ID, roster and createdBy are never part of a draft.
type BatchDraft struct {
	Name          string
	InstructorID  int
	Schedule      string
	TotalSessions int
	Color         string
	StartDate     string
}

// SortOption selects the batch list ordering.
type SortOption string

const (
	SortNameAsc       SortOption = "name-asc"
	SortNameDesc      SortOption = "name-desc"
	SortInstructorAsc SortOption = "instructor-asc"
	SortStudentsDesc  SortOption = "students-desc"
)

// BatchColors is the palette assigned to batches without an explicit color.
var BatchColors = []string{
	"#2dd4bf",
	"#818cf8",
	"#f472b6",
	"#fb923c",
	"#a78bfa",
	"#34d399",
}
