package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/clickstore/internal/dbx"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/cart"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/users"
)

const testSecret = "mysecret"

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// failingManager wraps a memory manager and lets a test swap single
// repositories for failing ones.
type failingManager struct {
	*repomanager.MemoryRepositoryManager
	users    users.Repository
	cart     cart.Repository
	sessions sessions.Repository
}

func (m *failingManager) Users(db dbx.DBTX) users.Repository {
	if m.users != nil {
		return m.users
	}
	return m.MemoryRepositoryManager.Users(db)
}

func (m *failingManager) Cart(db dbx.DBTX) cart.Repository {
	if m.cart != nil {
		return m.cart
	}
	return m.MemoryRepositoryManager.Cart(db)
}

func (m *failingManager) Sessions(db dbx.DBTX) sessions.Repository {
	if m.sessions != nil {
		return m.sessions
	}
	return m.MemoryRepositoryManager.Sessions(db)
}

// brokenSessions fails to purge a user's sessions.
type brokenSessions struct{ sessions.Repository }

func (brokenSessions) DeleteByUser(context.Context, int64) error { return errBoom{} }
