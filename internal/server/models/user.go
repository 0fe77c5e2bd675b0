// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered customer. PasswordHash holds the bcrypt hash; the
// plaintext password is never stored.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	PostalCode   string
	CreatedAt    time.Time
}
