// Package photos provides the PostgreSQL-backed repository for guest photo
// metadata and the moderation queries over it.
package photos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/dbx"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
)

const photoColumns = `id, guest_id, photo_url, storage_key, caption, location, is_approved, created_at`

// PostgresRepository implements photo storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pending photo record. The id, approval flag and
// created_at are assigned by the database and written back into photo.
func (r *PostgresRepository) Create(ctx context.Context, photo *models.GuestPhoto) (*models.GuestPhoto, error) {
	query :=
		`INSERT INTO guest_photos (guest_id, photo_url, storage_key, caption, location, is_approved)
		 VALUES ($1, $2, $3, $4, $5, FALSE)
		 RETURNING id, is_approved, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		photo.GuestID, photo.PhotoURL, photo.StorageKey, photo.Caption, photo.Location).
		Scan(&photo.ID, &photo.IsApproved, &photo.CreatedAt)

	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("guest %s: %w", photo.GuestID, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return photo, nil
}

// GetByID returns a photo regardless of its approval state.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.GuestPhoto, error) {
	query := `SELECT ` + photoColumns + ` FROM guest_photos WHERE id = $1`

	p, err := scanPhoto(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// ListApproved returns one page of approved photos, newest first.
// Photos created in the same instant are ordered by id descending so paging
// is stable.
func (r *PostgresRepository) ListApproved(ctx context.Context, limit, offset int) ([]*models.GuestPhoto, error) {
	query := `SELECT ` + photoColumns + ` FROM guest_photos
		WHERE is_approved = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	return r.list(ctx, query, limit, offset)
}

// ListPending returns photos awaiting moderation, oldest first.
func (r *PostgresRepository) ListPending(ctx context.Context) ([]*models.GuestPhoto, error) {
	query := `SELECT ` + photoColumns + ` FROM guest_photos
		WHERE is_approved = FALSE
		ORDER BY created_at ASC, id ASC`

	return r.list(ctx, query)
}

// SetApproved flips the moderation flag of a photo.
func (r *PostgresRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	query := `UPDATE guest_photos SET is_approved = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, approved)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.GuestPhoto, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.GuestPhoto, 0)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPhoto(s scanner) (*models.GuestPhoto, error) {
	var (
		p                 models.GuestPhoto
		caption, location sql.NullString
	)
	if err := s.Scan(&p.ID, &p.GuestID, &p.PhotoURL, &p.StorageKey, &caption, &location, &p.IsApproved, &p.CreatedAt); err != nil {
		return nil, err
	}
	if caption.Valid {
		p.Caption = &caption.String
	}
	if location.Valid {
		p.Location = &location.String
	}
	return &p, nil
}
