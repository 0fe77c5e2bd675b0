// Package users declares the credential store contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/clickstore/internal/server/models"
)

// Repository persists registered users.
type Repository interface {
	// Create inserts user and fills in its ID and CreatedAt. A second user
	// with the same email yields common.ErrorDuplicateEmail.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns common.ErrorNotFound when no user matches exactly.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)

	UpdatePostalCode(ctx context.Context, id int64, postalCode string) error
	Delete(ctx context.Context, id int64) error
}
