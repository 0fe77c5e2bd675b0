// Package cart stores cart lines. Every read and delete is scoped by both the
// owning user id and the owner token derived from the user's credentials.
package cart

import (
	"context"

	"github.com/dmitrijs2005/clickstore/internal/server/models"
)

type Repository interface {
	// Create inserts item and fills in its ID and CreatedAt.
	Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error)

	// ListByOwner returns the owner's items in insertion order. No match
	// yields an empty, non-nil slice.
	ListByOwner(ctx context.Context, userID int64, ownerToken string) ([]models.CartItem, error)

	GetByID(ctx context.Context, id, userID int64, ownerToken string) (*models.CartItem, error)

	// DeleteByID returns common.ErrorNotFound when nothing matched.
	DeleteByID(ctx context.Context, id, userID int64, ownerToken string) error
}
