// Package services contains server-side business logic: the credential store,
// session management, the cart ledger and receipt export. Services resolve
// their database handle per call through dbx.FromContext, so a connection
// borrowed for the current request is reused when present.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clickstore/internal/common"
	"github.com/dmitrijs2005/clickstore/internal/dbx"
	"github.com/dmitrijs2005/clickstore/internal/server/auth"
	"github.com/dmitrijs2005/clickstore/internal/server/models"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/repomanager"
)

// UserService provides account operations:
// - Register: create users with a bcrypt-hashed password
// - FindByEmail / FindByID: lookups
// - UpdatePostalCode, Delete: self-service changes
type UserService struct {
	db          dbx.Handle
	repomanager repomanager.RepositoryManager
}

// NewUserService constructs a UserService. db is used whenever the request
// context carries no borrowed connection.
func NewUserService(db dbx.Handle, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// Register creates a user. The email must not be registered yet (exact,
// case-sensitive match); otherwise common.ErrorDuplicateEmail is returned and
// the existing record is left untouched.
func (s *UserService) Register(ctx context.Context, email, password, postalCode string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, common.ErrorValidation
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hashing password: %w", common.ErrorInternal, err)
	}

	var created *models.User
	err = dbx.WithTx(ctx, dbx.FromContext(ctx, s.db), nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, email)
		switch {
		case err == nil:
			return common.ErrorDuplicateEmail
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		created, err = repo.Create(ctx, &models.User{Email: email, PasswordHash: hash, PostalCode: postalCode})
		return err
	})
	if err != nil {
		return nil, internalUnless(err, common.ErrorDuplicateEmail)
	}

	return created, nil
}

// FindByEmail returns common.ErrorNotFound for an unknown email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repomanager.Users(dbx.FromContext(ctx, s.db)).GetByEmail(ctx, email)
	if err != nil {
		return nil, internalUnless(err, common.ErrorNotFound)
	}
	return u, nil
}

// FindByID returns common.ErrorNotFound for an unknown id.
func (s *UserService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repomanager.Users(dbx.FromContext(ctx, s.db)).GetByID(ctx, id)
	if err != nil {
		return nil, internalUnless(err, common.ErrorNotFound)
	}
	return u, nil
}

// UpdatePostalCode overwrites the stored postal code.
func (s *UserService) UpdatePostalCode(ctx context.Context, id int64, postalCode string) error {
	err := dbx.WithTx(ctx, dbx.FromContext(ctx, s.db), nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).UpdatePostalCode(ctx, id, postalCode)
	})
	return internalUnless(err, common.ErrorNotFound)
}

// Delete removes the user together with every session they hold. Cart lines
// go with the user through the foreign key.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := dbx.WithTx(ctx, dbx.FromContext(ctx, s.db), nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Sessions(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, id)
	})
	return internalUnless(err, common.ErrorNotFound)
}

// internalUnless passes nil and the listed sentinels through unchanged and
// marks everything else as common.ErrorInternal, keeping the cause wrapped.
func internalUnless(err error, keep ...error) error {
	if err == nil {
		return nil
	}
	for _, k := range keep {
		if errors.Is(err, k) {
			return err
		}
	}
	if errors.Is(err, common.ErrorInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}
