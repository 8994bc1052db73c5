package guests

import (
	"context"

	"github.com/dmitrijs2005/guestgallery/internal/server/models"
)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*models.Guest, error)
	Create(ctx context.Context, guest *models.Guest) (*models.Guest, error)
	List(ctx context.Context) ([]*models.Guest, error)
}
