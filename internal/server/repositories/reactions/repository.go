package reactions

import (
	"context"

	"github.com/dmitrijs2005/guestgallery/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, reaction *models.GalleryReaction) (*models.GalleryReaction, error)
	Counts(ctx context.Context, photoID string) (map[models.Reaction]int64, error)
}
