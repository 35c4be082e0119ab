package services

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/recommender"
)

// RecommendationEngine produces advice from a snapshot of a user's items.
type RecommendationEngine interface {
	Generate(ctx context.Context, req recommender.Request) (*recommender.Response, error)
}

// ItemLister is the part of ItemService the gateway reads from.
type ItemLister interface {
	List(ctx context.Context, callerID int64) ([]*models.Item, error)
}

// RecommendationService forwards the caller's items to the engine. No
// database transaction is held while the engine works.
type RecommendationService struct {
	items  ItemLister
	engine RecommendationEngine
	log    logging.Logger
}

func NewRecommendationService(items ItemLister, engine RecommendationEngine, log logging.Logger) *RecommendationService {
	return &RecommendationService{
		items:  items,
		engine: engine,
		log:    log.With("module", "recommendations"),
	}
}

// GetRecommendation returns common.ErrNotFoundOrNotOwned when the caller has
// no items and common.ErrRemoteServiceUnavailable when the engine fails in
// any way.
func (s *RecommendationService) GetRecommendation(ctx context.Context, callerID int64) (*models.Recommendation, error) {
	items, err := s.items.List(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.ErrNotFoundOrNotOwned
	}

	resp, err := s.engine.Generate(ctx, snapshot(callerID, items))
	if err != nil {
		s.log.Warn(ctx, "no recommendation", "user_id", callerID, "error", err)
		return nil, common.ErrRemoteServiceUnavailable
	}

	return &models.Recommendation{Text: resp.Recommendation, GeneratedAt: resp.GeneratedAt}, nil
}

func snapshot(callerID int64, items []*models.Item) recommender.Request {
	req := recommender.Request{
		UserID: callerID,
		Items:  make([]recommender.Item, 0, len(items)),
	}
	for _, it := range items {
		req.Items = append(req.Items, recommender.Item{
			Name:        it.Name,
			Price:       json.Number(it.Price.StringFixed(2)),
			Category:    it.Category,
			DateAdded:   it.DateAdded.String(),
			Description: it.Description,
		})
	}
	return req
}
