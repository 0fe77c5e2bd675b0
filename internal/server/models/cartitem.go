package models

import "time"

// CartItem is one line of a user's cart. OwnerToken is derived server-side
// from the owner's credentials at insert time.
type CartItem struct {
	ID         int64
	UserID     int64
	Product    string
	Amount     string
	Wave       string
	OwnerToken string
	CreatedAt  time.Time
}
