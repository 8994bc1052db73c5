// Package guests provides the PostgreSQL-backed guest list repository.
package guests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/dbx"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
)

// PostgresRepository implements guest storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByEmail looks a guest up by email, ignoring case.
// Returns common.ErrorNotFound when no guest matches.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Guest, error) {
	query :=
		`SELECT id, email, first_name, last_name, household_group, plus_one_allowed, created_at
		 FROM guests
		 WHERE lower(email) = lower($1)
		 `

	g := &models.Guest{}
	var household sql.NullString
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&g.ID, &g.Email, &g.FirstName, &g.LastName, &household, &g.PlusOneAllowed, &g.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if household.Valid {
		g.HouseholdGroup = &household.String
	}

	return g, nil
}

// Create inserts a guest and fills in the generated id and created_at.
// A duplicate email yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, guest *models.Guest) (*models.Guest, error) {
	query :=
		`INSERT INTO guests (email, first_name, last_name, household_group, plus_one_allowed)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		guest.Email, guest.FirstName, guest.LastName, guest.HouseholdGroup, guest.PlusOneAllowed).
		Scan(&guest.ID, &guest.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("guest %s: %w", guest.Email, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return guest, nil
}

// List returns every guest ordered by last name, then first name.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Guest, error) {
	query :=
		`SELECT id, email, first_name, last_name, household_group, plus_one_allowed, created_at
		 FROM guests
		 ORDER BY last_name, first_name
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Guest
	for rows.Next() {
		var (
			g         models.Guest
			household sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Email, &g.FirstName, &g.LastName, &household, &g.PlusOneAllowed, &g.CreatedAt); err != nil {
			return nil, err
		}
		if household.Valid {
			g.HouseholdGroup = &household.String
		}
		result = append(result, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
