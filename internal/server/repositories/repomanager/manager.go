package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/stargram/internal/dbx"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/comments"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/feeds"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/images"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so services pick the scope per operation.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Feeds(db dbx.DBTX) feeds.Repository
	Images(db dbx.DBTX) images.Repository
	Comments(db dbx.DBTX) comments.Repository
}
