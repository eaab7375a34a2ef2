package models

// Student is a globally registered dancer. Students are created through batch
// enrollment but outlive any single batch membership.
type Student struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// StudentRef is the minimal (id, name) projection sent to the sheet backend.
type StudentRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Ref returns the sync projection of the student.
func (s Student) Ref() StudentRef {
	return StudentRef{ID: s.ID, Name: s.Name}
}
