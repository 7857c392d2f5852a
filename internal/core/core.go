// Package core implements the operations of the platform against the
// Postgres entity store: accounts, the social graph, articles, favorites,
// comments and tags. Handlers call into here and get back view structs or
// typed failures; nothing in this package writes HTTP.
package core

import (
	"database/sql"
	"log/slog"

	"github.com/siahsang/conduit/internal/utils/databaseutils"
)

type Core struct {
	log         *slog.Logger
	db          *sql.DB
	sqlTemplate *databaseutils.SQLTemplate
	session     databaseutils.Session
}

func NewCore(dbConn *sql.DB, log *slog.Logger, sqlTemplate *databaseutils.SQLTemplate, session databaseutils.Session) *Core {
	return &Core{
		log:         log,
		db:          dbConn,
		sqlTemplate: sqlTemplate,
		session:     session,
	}
}
