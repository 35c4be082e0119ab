package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
)

// ItemService gives a caller access to their own items only. An item that
// does not exist and an item owned by someone else both yield
// common.ErrNotFoundOrNotOwned.
type ItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewItemService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ItemService {
	return &ItemService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "items"),
		now:         time.Now,
	}
}

func (s *ItemService) List(ctx context.Context, callerID int64) ([]*models.Item, error) {
	items, err := s.repomanager.Items(s.db).ListByUser(ctx, callerID)
	if err != nil {
		return nil, s.internal(ctx, "list items", err)
	}
	return items, nil
}

func (s *ItemService) Get(ctx context.Context, itemID, callerID int64) (*models.Item, error) {
	item, err := s.repomanager.Items(s.db).GetByIDAndUser(ctx, itemID, callerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotFoundOrNotOwned
		}
		return nil, s.internal(ctx, "get item", err)
	}
	return item, nil
}

// Create stores item as owned by callerID, whatever owner or ID it carried.
// A missing DateAdded becomes today. A callerID with no account behind it
// yields common.ErrInvalidIdentityClaim.
func (s *ItemService) Create(ctx context.Context, item *models.Item, callerID int64) (*models.Item, error) {
	if err := normalizeItem(item); err != nil {
		return nil, err
	}

	item.ID = 0
	item.UserID = callerID
	if item.DateAdded.IsZero() {
		item.DateAdded = models.DateOf(s.now())
	}

	created, err := s.repomanager.Items(s.db).Create(ctx, item)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidIdentityClaim
		}
		return nil, s.internal(ctx, "create item", err)
	}

	s.log.Debug(ctx, "item created", "user_id", callerID, "item_id", created.ID)
	return created, nil
}

// Update replaces the mutable fields of the caller's item with those of src.
// A zero DateAdded in src keeps the stored date.
func (s *ItemService) Update(ctx context.Context, itemID int64, src *models.Item, callerID int64) (*models.Item, error) {
	if err := normalizeItem(src); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, itemID, callerID)
	if err != nil {
		return nil, err
	}

	date := existing.DateAdded
	existing.ApplyUpdate(src)
	if existing.DateAdded.IsZero() {
		existing.DateAdded = date
	}

	if err := s.repomanager.Items(s.db).Update(ctx, existing); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotFoundOrNotOwned
		}
		return nil, s.internal(ctx, "update item", err)
	}

	return existing, nil
}

// Delete reports whether an item owned by callerID was removed.
func (s *ItemService) Delete(ctx context.Context, itemID, callerID int64) (bool, error) {
	deleted, err := s.repomanager.Items(s.db).DeleteByIDAndUser(ctx, itemID, callerID)
	if err != nil {
		return false, s.internal(ctx, "delete item", err)
	}
	return deleted, nil
}

func (s *ItemService) internal(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}
