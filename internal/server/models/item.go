// Package models defines server-side data models persisted in the database.
package models

import "github.com/shopspring/decimal"

// Item is a single expense or purchase owned by exactly one user.
type Item struct {
	ID     int64
	UserID int64

	Name        string
	Price       decimal.Decimal
	Category    string
	DateAdded   Date
	Description string
}

// ApplyUpdate copies the mutable fields of src onto i. ID and UserID are
// left untouched whatever src carries.
func (i *Item) ApplyUpdate(src *Item) {
	i.Name = src.Name
	i.Price = src.Price
	i.Category = src.Category
	i.DateAdded = src.DateAdded
	i.Description = src.Description
}
