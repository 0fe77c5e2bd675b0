package models

import "time"

// Session binds the hash of an opaque client-held handle to a user.
type Session struct {
	ID         string
	TokenHash  string
	UserID     int64
	ExpiresAt  time.Time
	LastSeenAt time.Time
	CreatedAt  time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
