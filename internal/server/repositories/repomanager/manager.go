package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophidentity/internal/dbx"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/roles"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/users"
)

// RepositoryManager vends stores bound to a pool or a transaction and owns
// schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Store
	Roles(db dbx.DBTX) roles.Store
}
