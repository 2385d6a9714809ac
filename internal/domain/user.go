package domain

import "time"

// Role gates which mutations a user may perform.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is an account that can authenticate against the directory.
type User struct {
	ID           string
	Username     string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	EmployeeID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserFields carries a partial user update; nil fields are left untouched.
type UserFields struct {
	Password   *string
	Role       *Role
	EmployeeID *string
}
