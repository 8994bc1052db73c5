// Package reactions provides the PostgreSQL-backed repository for gallery
// reactions.
package reactions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/dbx"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
)

// PostgresRepository implements reaction storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert stores the guest's reaction to a photo, replacing any earlier one.
func (r *PostgresRepository) Upsert(ctx context.Context, reaction *models.GalleryReaction) (*models.GalleryReaction, error) {
	query := `
		INSERT INTO gallery_reactions (guest_id, photo_id, reaction)
		VALUES ($1, $2, $3)
		ON CONFLICT (guest_id, photo_id)
		DO UPDATE SET reaction = EXCLUDED.reaction
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, reaction.GuestID, reaction.PhotoID, string(reaction.Reaction)).
		Scan(&reaction.ID, &reaction.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return reaction, nil
}

// Counts returns the number of reactions of each kind for a photo. Every
// known reaction is present in the result, zero when nobody chose it.
func (r *PostgresRepository) Counts(ctx context.Context, photoID string) (map[models.Reaction]int64, error) {
	query := `SELECT reaction, count(*) FROM gallery_reactions WHERE photo_id = $1 GROUP BY reaction`

	rows, err := r.db.QueryContext(ctx, query, photoID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make(map[models.Reaction]int64, len(models.Reactions))
	for _, known := range models.Reactions {
		result[known] = 0
	}
	for rows.Next() {
		var (
			kind  string
			count int64
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		result[models.Reaction(kind)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
