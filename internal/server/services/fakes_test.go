package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	itemsrepo "github.com/dmitrijs2005/fintrack/internal/server/repositories/items"
	usersrepo "github.com/dmitrijs2005/fintrack/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	usersrepo.Repository

	usernameTaken bool
	emailTaken    bool
	existsErr     error

	created   *models.User
	createErr error

	getOut *models.User
	getErr error

	deleted   bool
	deleteErr error
}

func (f *fakeUsersRepo) ExistsByUsername(context.Context, string) (bool, error) {
	return f.usernameTaken, f.existsErr
}

func (f *fakeUsersRepo) ExistsByEmail(context.Context, string) (bool, error) {
	return f.emailTaken, f.existsErr
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = 1
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) Delete(context.Context, int64) (bool, error) {
	return f.deleted, f.deleteErr
}

// fakeItemsRepo keeps items in memory and enforces ownership like the
// Postgres repository does.
type fakeItemsRepo struct {
	itemsrepo.Repository

	items  map[int64]*models.Item
	nextID int64
	err    error
}

func newFakeItemsRepo(items ...*models.Item) *fakeItemsRepo {
	f := &fakeItemsRepo{items: map[int64]*models.Item{}, nextID: 100}
	for _, it := range items {
		cp := *it
		f.items[it.ID] = &cp
	}
	return f
}

func (f *fakeItemsRepo) ListByUser(_ context.Context, userID int64) ([]*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Item, 0)
	for id := int64(0); id <= f.nextID; id++ {
		if it, ok := f.items[id]; ok && it.UserID == userID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeItemsRepo) GetByIDAndUser(_ context.Context, id, userID int64) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	it, ok := f.items[id]
	if !ok || it.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItemsRepo) Create(_ context.Context, item *models.Item) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	item.ID = f.nextID
	cp := *item
	f.items[item.ID] = &cp
	return item, nil
}

func (f *fakeItemsRepo) Update(_ context.Context, item *models.Item) error {
	if f.err != nil {
		return f.err
	}
	it, ok := f.items[item.ID]
	if !ok || it.UserID != item.UserID {
		return common.ErrorNotFound
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeItemsRepo) DeleteByIDAndUser(_ context.Context, id, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	it, ok := f.items[id]
	if !ok || it.UserID != userID {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func (f *fakeItemsRepo) DeleteByUser(_ context.Context, userID int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for id, it := range f.items {
		if it.UserID == userID {
			delete(f.items, id)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	i *fakeItemsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }
func (m *fakeRepoManager) Items(dbx.DBTX) itemsrepo.Repository          { return m.i }
