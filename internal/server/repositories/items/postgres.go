// Package items provides the PostgreSQL-backed item store.
package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// PostgresRepository implements item storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const itemColumns = `id, user_id, name, price, category, date_added, description`

// ListByUser returns the user's items ordered by ID. A user without items
// gets an empty, non-nil slice.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE user_id = $1
		ORDER BY id
		`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// GetByIDAndUser returns common.ErrorNotFound when the item does not exist or
// belongs to someone else.
func (r *PostgresRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE id = $1 AND user_id = $2
		`
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Create inserts the item and fills in its ID. A zero DateAdded falls back
// to the database's current date. An owner that does not exist yields
// common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := `INSERT INTO items (user_id, name, price, category, date_added, description)
		VALUES ($1, $2, $3, $4, COALESCE($5::date, CURRENT_DATE), $6)
		RETURNING id, date_added
		`
	err := r.db.QueryRowContext(ctx, query,
		item.UserID, item.Name, item.Price, nullable(item.Category), item.DateAdded, nullable(item.Description),
	).Scan(&item.ID, &item.DateAdded)
	if err != nil {
		if _, ok := dbx.ForeignKeyViolation(err); ok {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Update overwrites the mutable fields of the item identified by item.ID and
// item.UserID. Returns common.ErrorNotFound when no such owned row exists.
func (r *PostgresRepository) Update(ctx context.Context, item *models.Item) error {
	query := `UPDATE items
		SET name = $1, price = $2, category = $3, date_added = $4, description = $5
		WHERE id = $6 AND user_id = $7
		`
	res, err := r.db.ExecContext(ctx, query,
		item.Name, item.Price, nullable(item.Category), item.DateAdded, nullable(item.Description),
		item.ID, item.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) DeleteByIDAndUser(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// DeleteByUser removes every item owned by userID and reports how many went.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.Item, error) {
	var (
		item        models.Item
		category    sql.NullString
		description sql.NullString
	)
	err := s.Scan(&item.ID, &item.UserID, &item.Name, &item.Price, &category, &item.DateAdded, &description)
	if err != nil {
		return nil, err
	}
	item.Category = category.String
	item.Description = description.String
	return &item, nil
}

// nullable stores empty optional text as NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
