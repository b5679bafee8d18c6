package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/accounts"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code path
// works against the pool or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
