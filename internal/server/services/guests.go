package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/dbx"
	"github.com/dmitrijs2005/guestgallery/internal/server/config"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/repomanager"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// GuestService maps sessions to guests and maintains the guest list.
// Guests never change once imported, so resolved guests are kept in a
// bounded cache; lookups that find nothing are not cached.
type GuestService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *expirable.LRU[string, *models.Guest]
	timeout     time.Duration
}

// NewGuestService constructs a GuestService. A non-positive cache size
// disables caching.
func NewGuestService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *GuestService {
	s := &GuestService{
		db:          db,
		repomanager: m,
		timeout:     cfg.DatabaseTimeout,
	}
	if cfg.GuestCacheSize > 0 {
		s.cache = expirable.NewLRU[string, *models.Guest](cfg.GuestCacheSize, nil, cfg.GuestCacheTTL)
	}
	return s
}

// Resolve returns the guest behind session. It fails with
// common.ErrorUnauthorized without a session, common.ErrorNotFound when no
// guest has the session email and common.ErrDatabase when the lookup fails.
func (s *GuestService) Resolve(ctx context.Context, session *models.Session) (*models.Guest, error) {
	if session == nil || strings.TrimSpace(session.Email) == "" {
		return nil, common.ErrorUnauthorized
	}
	email := strings.ToLower(strings.TrimSpace(session.Email))

	if s.cache != nil {
		if g, ok := s.cache.Get(email); ok {
			return g, nil
		}
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	g, err := s.repomanager.Guests(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: guest lookup: %w", common.ErrDatabase, err)
	}

	if s.cache != nil {
		s.cache.Add(email, g)
	}
	return g, nil
}

// Import inserts guests in a single transaction; either all of them are
// stored or none is.
func (s *GuestService) Import(ctx context.Context, guests []*models.Guest) error {
	for i, g := range guests {
		g.Email = strings.TrimSpace(g.Email)
		if g.Email == "" {
			return common.NewValidationError(fmt.Sprintf("guest #%d has no email", i+1))
		}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Guests(tx)
		for _, g := range guests {
			if _, err := repo.Create(ctx, g); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns all guests.
func (s *GuestService) List(ctx context.Context) ([]*models.Guest, error) {
	return s.repomanager.Guests(s.db).List(ctx)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
