package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rating bounds for products
const (
	MinRating = 1
	MaxRating = 10
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Rating      int             `json:"rating" db:"rating"`
	Description *string         `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`

	// Categories the product is associated with, loaded one level deep
	Categories []Category `json:"categories"`
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Products associated with the category, loaded one level deep
	Products []Product `json:"products"`
}

// ValidRating reports whether a rating value is inside the allowed range
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
