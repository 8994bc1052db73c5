package photos

import (
	"context"

	"github.com/dmitrijs2005/guestgallery/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, photo *models.GuestPhoto) (*models.GuestPhoto, error)
	GetByID(ctx context.Context, id string) (*models.GuestPhoto, error)
	ListApproved(ctx context.Context, limit, offset int) ([]*models.GuestPhoto, error)
	ListPending(ctx context.Context) ([]*models.GuestPhoto, error)
	SetApproved(ctx context.Context, id string, approved bool) error
}
