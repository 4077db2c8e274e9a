package models

import "time"

// Session is the server-held state behind a signed session cookie
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin reports whether the session belongs to an admin
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Expired reports whether the session is no longer valid at the given time
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
