package rest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
)

type fakeAccounts struct {
	regOut *services.AuthResult
	regErr error

	authOut *services.AuthResult
	authErr error

	deleted   []int64
	deleteErr error
}

func (f *fakeAccounts) Register(_ context.Context, username, _, _ string) (*services.AuthResult, error) {
	if f.regErr != nil {
		return nil, f.regErr
	}
	if f.regOut != nil {
		return f.regOut, nil
	}
	return &services.AuthResult{UserID: 1, UserName: username, Message: services.MessageRegistered}, nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, username, _ string) (*services.AuthResult, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	if f.authOut != nil {
		return f.authOut, nil
	}
	return &services.AuthResult{UserID: 1, UserName: username, Message: services.MessageLoggedIn}, nil
}

func (f *fakeAccounts) Delete(_ context.Context, callerID int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, callerID)
	return nil
}

// fakeItems stores items per owner and reports foreign or missing items as
// common.ErrNotFoundOrNotOwned.
type fakeItems struct {
	items  map[int64]*models.Item
	nextID int64
	err    error

	lastCreate *models.Item
}

func newFakeItems(items ...*models.Item) *fakeItems {
	f := &fakeItems{items: map[int64]*models.Item{}, nextID: 10}
	for _, it := range items {
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeItems) List(_ context.Context, callerID int64) ([]*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Item, 0)
	for id := int64(0); id <= f.nextID; id++ {
		if it, ok := f.items[id]; ok && it.UserID == callerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) Get(_ context.Context, itemID, callerID int64) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	it, ok := f.items[itemID]
	if !ok || it.UserID != callerID {
		return nil, common.ErrNotFoundOrNotOwned
	}
	return it, nil
}

func (f *fakeItems) Create(_ context.Context, item *models.Item, callerID int64) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCreate = item
	f.nextID++
	item.ID = f.nextID
	item.UserID = callerID
	if item.DateAdded.IsZero() {
		item.DateAdded = models.NewDate(2026, 10, 17)
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeItems) Update(ctx context.Context, itemID int64, src *models.Item, callerID int64) (*models.Item, error) {
	it, err := f.Get(ctx, itemID, callerID)
	if err != nil {
		return nil, err
	}
	it.ApplyUpdate(src)
	return it, nil
}

func (f *fakeItems) Delete(_ context.Context, itemID, callerID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	it, ok := f.items[itemID]
	if !ok || it.UserID != callerID {
		return false, nil
	}
	delete(f.items, itemID)
	return true, nil
}

type fakeRecommendations struct {
	out *models.Recommendation
	err error

	// When delay is set the call signals started and then waits, failing
	// with the context error if ctx ends first.
	delay   time.Duration
	started chan struct{}
}

func (f *fakeRecommendations) GetRecommendation(ctx context.Context, _ int64) (*models.Recommendation, error) {
	if f.delay > 0 {
		if f.started != nil {
			close(f.started)
		}
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.out, f.err
}

type testDeps struct {
	accounts *fakeAccounts
	items    *fakeItems
	recs     *fakeRecommendations
}

func newTestServer(d testDeps, mutate ...func(*Options)) *Server {
	if d.accounts == nil {
		d.accounts = &fakeAccounts{}
	}
	if d.items == nil {
		d.items = newFakeItems()
	}
	if d.recs == nil {
		d.recs = &fakeRecommendations{err: common.ErrNotFoundOrNotOwned}
	}
	o := Options{
		Address:         "127.0.0.1:0",
		Accounts:        d.accounts,
		Items:           d.items,
		Recommendations: d.recs,
		Logger:          logging.Nop(),
	}
	for _, m := range mutate {
		m(&o)
	}
	return NewServer(o)
}
