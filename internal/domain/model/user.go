package model

import "time"

// UserRole separates customers from operators.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// User is a registered account.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
}

// IsAdmin reports whether the user may access operator endpoints.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
