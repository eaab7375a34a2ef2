package models

// UserRole represents the available roles.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher:
		return true
	default:
		return false
	}
}

// User represents an instructor or admin account from the seed snapshot.
type User struct {
	ID           int      `json:"id"`
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"-"`
}

// Info projects the public view of a user.
func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role}
}

// UserInfo describes a user in responses.
type UserInfo struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
}
