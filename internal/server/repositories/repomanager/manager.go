package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/guestgallery/internal/dbx"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/guests"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/photos"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/reactions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Guests(db dbx.DBTX) guests.Repository
	Photos(db dbx.DBTX) photos.Repository
	Reactions(db dbx.DBTX) reactions.Repository
}
