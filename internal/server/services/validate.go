package services

import (
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/shopspring/decimal"
)

// Column limits of the users and items tables.
const (
	MaxUsernameLength = 50
	MaxEmailLength    = 100
	MaxNameLength     = 100
	MaxCategoryLength = 50

	// bcrypt only looks at the first 72 bytes and rejects longer input.
	MaxPasswordBytes = 72

	priceScale = 2
)

// Exponent window accepted for prices. Values outside it are refused before
// any rounding or comparison takes place.
const (
	minPriceExponent = -18
	maxPriceExponent = 10
)

// maxPrice is the first value that no longer fits NUMERIC(10,2).
var maxPrice = decimal.New(1, 8)

// ValidatePrice rejects prices whose decimal exponent lies outside the
// accepted window.
func ValidatePrice(price decimal.Decimal) error {
	if e := price.Exponent(); e < minPriceExponent || e > maxPriceExponent {
		return &common.ValidationError{Field: "price", Reason: "is out of range"}
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &common.ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

func maxLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return &common.ValidationError{Field: field, Reason: "is too long"}
	}
	return nil
}

func validateCredentials(username, email, rawPassword string) error {
	if err := required("username", username); err != nil {
		return err
	}
	if err := required("email", email); err != nil {
		return err
	}
	if err := required("password", rawPassword); err != nil {
		return err
	}
	if err := maxLength("username", username, MaxUsernameLength); err != nil {
		return err
	}
	if len(rawPassword) > MaxPasswordBytes {
		return &common.ValidationError{Field: "password", Reason: "is too long"}
	}
	return maxLength("email", email, MaxEmailLength)
}

// normalizeItem checks the item against the table limits and rounds the
// price to cents the way the NUMERIC column would.
func normalizeItem(item *models.Item) error {
	if err := required("name", item.Name); err != nil {
		return err
	}
	if err := maxLength("name", item.Name, MaxNameLength); err != nil {
		return err
	}
	if err := maxLength("category", item.Category, MaxCategoryLength); err != nil {
		return err
	}

	if err := ValidatePrice(item.Price); err != nil {
		return err
	}
	item.Price = item.Price.Round(priceScale)
	if item.Price.Abs().GreaterThanOrEqual(maxPrice) {
		return &common.ValidationError{Field: "price", Reason: "is out of range"}
	}
	return nil
}
