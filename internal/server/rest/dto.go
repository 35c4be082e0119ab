package rest

import (
	"encoding/json"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
	"github.com/shopspring/decimal"
)

type errorResponse struct {
	Error string `json:"error"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse is shared by signup and login. Failures carry null userId
// and username.
type authResponse struct {
	UserID   *int64  `json:"userId"`
	Username *string `json:"username"`
	Message  string  `json:"message"`
}

func authSuccess(res *services.AuthResult) authResponse {
	return authResponse{UserID: &res.UserID, Username: &res.UserName, Message: res.Message}
}

func authFailure(msg string) authResponse {
	return authResponse{Message: msg}
}

// itemDTO is the wire form of an item. The id is ignored on input.
type itemDTO struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Category    *string     `json:"category"`
	DateAdded   models.Date `json:"dateAdded"`
	Description *string     `json:"description"`
}

func newItemDTO(it *models.Item) itemDTO {
	return itemDTO{
		ID:          it.ID,
		Name:        it.Name,
		Price:       json.Number(it.Price.StringFixed(2)),
		Category:    optional(it.Category),
		DateAdded:   it.DateAdded,
		Description: optional(it.Description),
	}
}

func newItemDTOs(items []*models.Item) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, newItemDTO(it))
	}
	return out
}

// toModel converts the payload into an item. Price is required and must be
// a decimal number.
func (d itemDTO) toModel() (*models.Item, error) {
	if d.Price == "" {
		return nil, &common.ValidationError{Field: "price", Reason: "is required"}
	}
	price, err := decimal.NewFromString(string(d.Price))
	if err != nil {
		return nil, &common.ValidationError{Field: "price", Reason: "is not a number"}
	}
	if err := services.ValidatePrice(price); err != nil {
		return nil, err
	}

	item := &models.Item{
		Name:      d.Name,
		Price:     price,
		DateAdded: d.DateAdded,
	}
	if d.Category != nil {
		item.Category = *d.Category
	}
	if d.Description != nil {
		item.Description = *d.Description
	}
	return item, nil
}

type recommendationResponse struct {
	Recommendation string `json:"recommendation"`
	GeneratedAt    string `json:"generatedAt"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
