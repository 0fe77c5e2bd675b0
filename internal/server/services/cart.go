package services

import (
	"context"

	"github.com/dmitrijs2005/clickstore/internal/common"
	"github.com/dmitrijs2005/clickstore/internal/dbx"
	"github.com/dmitrijs2005/clickstore/internal/server/auth"
	"github.com/dmitrijs2005/clickstore/internal/server/models"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/repomanager"
)

// CartService is the cart ledger. The owner token is recomputed from the
// stored user on every call.
type CartService struct {
	db          dbx.Handle
	repomanager repomanager.RepositoryManager
	secret      []byte
}

func NewCartService(db dbx.Handle, m repomanager.RepositoryManager, secret string) *CartService {
	return &CartService{db: db, repomanager: m, secret: []byte(secret)}
}

func (s *CartService) ownerToken(ctx context.Context, h dbx.DBTX, userID int64) (string, error) {
	user, err := s.repomanager.Users(h).GetByID(ctx, userID)
	if err != nil {
		return "", internalUnless(err, common.ErrorNotFound)
	}
	return auth.DeriveToken(s.secret, user.Email, user.PasswordHash), nil
}

// AddItem records a cart line for userID. A vanished user is
// common.ErrorNotFound.
func (s *CartService) AddItem(ctx context.Context, userID int64, product, amount, wave string) (*models.CartItem, error) {
	h := dbx.FromContext(ctx, s.db)

	token, err := s.ownerToken(ctx, h, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.repomanager.Cart(h).Create(ctx, &models.CartItem{
		UserID:     userID,
		Product:    product,
		Amount:     amount,
		Wave:       wave,
		OwnerToken: token,
	})
	if err != nil {
		return nil, internalUnless(err)
	}
	return item, nil
}

// ListByOwner returns the user's lines in insertion order, never nil.
func (s *CartService) ListByOwner(ctx context.Context, userID int64) ([]models.CartItem, error) {
	h := dbx.FromContext(ctx, s.db)

	token, err := s.ownerToken(ctx, h, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repomanager.Cart(h).ListByOwner(ctx, userID, token)
	if err != nil {
		return nil, internalUnless(err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// GetByID returns one of the user's lines.
func (s *CartService) GetByID(ctx context.Context, userID, itemID int64) (*models.CartItem, error) {
	h := dbx.FromContext(ctx, s.db)

	token, err := s.ownerToken(ctx, h, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.repomanager.Cart(h).GetByID(ctx, itemID, userID, token)
	if err != nil {
		return nil, internalUnless(err, common.ErrorNotFound)
	}
	return item, nil
}

// DeleteByID removes one of the user's lines; anything not owned is
// common.ErrorNotFound.
func (s *CartService) DeleteByID(ctx context.Context, userID, itemID int64) error {
	h := dbx.FromContext(ctx, s.db)

	token, err := s.ownerToken(ctx, h, userID)
	if err != nil {
		return err
	}

	return internalUnless(s.repomanager.Cart(h).DeleteByID(ctx, itemID, userID, token), common.ErrorNotFound)
}
