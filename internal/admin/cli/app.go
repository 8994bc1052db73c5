package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/guestgallery/internal/logging"
	"github.com/dmitrijs2005/guestgallery/internal/server/config"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/guestgallery/internal/server/services"
)

// GuestAdmin is the guest side of the console.
type GuestAdmin interface {
	Import(ctx context.Context, guests []*models.Guest) error
	List(ctx context.Context) ([]*models.Guest, error)
	Resolve(ctx context.Context, session *models.Session) (*models.Guest, error)
}

// PhotoModerator is the moderation side of the console.
type PhotoModerator interface {
	ListPending(ctx context.Context) ([]*models.GuestPhoto, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
}

type App struct {
	config *config.Config
	db     *sql.DB
	guests GuestAdmin
	photos PhotoModerator
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	logger := logging.New(logging.FormatConsole, os.Stderr)

	// no object store: the console never uploads
	gs := services.NewGuestService(db, rm, c)
	ps := services.NewPhotoService(db, rm, gs, nil, c, logger, nil)

	return &App{
		config: c,
		db:     db,
		guests: gs,
		photos: ps,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	fmt.Fprintln(a.out, "Welcome to the gallery admin console (type 'help' for commands)")
	runREPL(ctx, a, bufio.NewScanner(a.reader))
}
