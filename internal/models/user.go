package models

import "time"

// Role is the access tier of a user account
type Role string

// Role constants
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a row of the users table
type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        *string   `db:"email" json:"email,omitempty"` // nil when not provided
	PasswordHash string    `db:"password_hash" json:"-"`       // Never serialize password hash
	Role         Role      `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// EmailOrEmpty returns the email address or an empty string when absent
func (u *User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// RegisterRequest holds the submitted registration data
type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	AdminCode string
}

// LoginRequest holds the submitted login data
type LoginRequest struct {
	Username string
	Password string
}
