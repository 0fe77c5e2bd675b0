package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clickstore/internal/dbx"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/cart"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code path
// works on the pool, a borrowed connection or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Cart(db dbx.DBTX) cart.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
