package service

import (
	"context"

	"github.com/danceflow/attendance-api/internal/models"
)

type userReader interface {
	Users() []models.User
}

// UserService exposes read-only views over the seed user table.
type UserService struct {
	users userReader
}

// NewUserService constructs UserService.
func NewUserService(users userReader) *UserService {
	return &UserService{users: users}
}

// Instructors lists the teacher-role users that batch forms can assign.
func (s *UserService) Instructors(ctx context.Context) []models.UserInfo {
	var out []models.UserInfo
	for _, u := range s.users.Users() {
		if u.Role == models.RoleTeacher {
			out = append(out, u.Info())
		}
	}
	return out
}
