package model

type UserRole string

const (
	Learner    UserRole = "user"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// User is the public profile the backend attaches to reviews and purchases.
// swagger:model User
type User struct {
	ID     string   `json:"_id" validate:"required"`
	Name   string   `json:"name"`
	Email  string   `json:"email" validate:"omitempty,email"`
	Role   UserRole `json:"role" validate:"omitempty,oneof=user instructor admin"`
	Avatar string   `json:"avatar,omitempty"`
}
