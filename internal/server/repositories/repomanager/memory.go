package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clickstore/internal/dbx"
	"github.com/dmitrijs2005/clickstore/internal/server/models"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/cart"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/users"
)

// MemoryRepositoryManager serves process-local repositories regardless of
// the DBTX passed in, so transactions only bracket calls without isolating
// them. Used for tests and the "memory" database mode.
type MemoryRepositoryManager struct {
	UsersRepo    *MemoryUsers
	CartRepo     *cart.MemoryRepository
	SessionsRepo *sessions.MemoryRepository
}

// MemoryUsers cascades user deletion to the cart, like the SQL schema does.
type MemoryUsers struct {
	*users.MemoryRepository
	cart *cart.MemoryRepository
}

func (u *MemoryUsers) Delete(ctx context.Context, id int64) error {
	if err := u.MemoryRepository.Delete(ctx, id); err != nil {
		return err
	}
	u.cart.DeleteByUser(id)
	return nil
}

// Create copies the input so callers cannot alias stored state.
func (u *MemoryUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	c := *user
	return u.MemoryRepository.Create(ctx, &c)
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	c := cart.NewMemoryRepository()
	return &MemoryRepositoryManager{
		UsersRepo:    &MemoryUsers{MemoryRepository: users.NewMemoryRepository(), cart: c},
		CartRepo:     c,
		SessionsRepo: sessions.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.UsersRepo }

func (m *MemoryRepositoryManager) Cart(dbx.DBTX) cart.Repository { return m.CartRepo }

func (m *MemoryRepositoryManager) Sessions(dbx.DBTX) sessions.Repository { return m.SessionsRepo }
