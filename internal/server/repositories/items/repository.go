package items

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// Repository stores items. Every lookup and mutation is keyed by owner as
// well as by item ID, so a foreign item behaves exactly like a missing one.
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]*models.Item, error)
	GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	DeleteByIDAndUser(ctx context.Context, id, userID int64) (bool, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
