package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/repomanager"
)

// PhotoFinder looks up photos that are visible in the gallery.
type PhotoFinder interface {
	GetApproved(ctx context.Context, id string) (*models.GuestPhoto, error)
}

// ReactionService records guests' reactions to approved photos.
type ReactionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	guests      GuestResolver
	photos      PhotoFinder
}

// NewReactionService constructs a ReactionService.
func NewReactionService(db *sql.DB, m repomanager.RepositoryManager, guests GuestResolver, photos PhotoFinder) *ReactionService {
	return &ReactionService{db: db, repomanager: m, guests: guests, photos: photos}
}

// React stores the session guest's reaction to an approved photo, replacing
// the guest's previous reaction to it.
func (s *ReactionService) React(ctx context.Context, session *models.Session, photoID string, reaction models.Reaction) (*models.GalleryReaction, error) {
	if !reaction.Valid() {
		return nil, common.NewValidationError(fmt.Sprintf("%s: %q", common.ErrUnsupportedReaction, reaction))
	}

	guest, err := s.guests.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	if _, err := s.photos.GetApproved(ctx, photoID); err != nil {
		return nil, err
	}

	r, err := s.repomanager.Reactions(s.db).Upsert(ctx, &models.GalleryReaction{
		GuestID:  guest.ID,
		PhotoID:  photoID,
		Reaction: reaction,
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: save reaction: %w", common.ErrDatabase, err)
	}
	return r, nil
}

// Counts returns how many guests chose each reaction for an approved photo.
func (s *ReactionService) Counts(ctx context.Context, photoID string) (map[models.Reaction]int64, error) {
	if _, err := s.photos.GetApproved(ctx, photoID); err != nil {
		return nil, err
	}

	counts, err := s.repomanager.Reactions(s.db).Counts(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("%w: count reactions: %w", common.ErrDatabase, err)
	}
	return counts, nil
}
