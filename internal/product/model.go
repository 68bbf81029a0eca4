package product

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-checkout/internal/listing"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	// Stock is the quantity on hand. Only order placement decrements it.
	Stock     int       `json:"stock"`
	ImageURL  string    `json:"image_url,omitempty"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	Q          string             `json:"q,omitempty"`
	Products   []Product          `json:"products"`
	Pagination listing.Pagination `json:"pagination"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name        string `json:"name"        binding:"required" example:"Mechanical Keyboard"`
	Category    string `json:"category"    binding:"required" example:"Electronics"`
	Description string `json:"description" example:"RGB 60%"`
	Price       string `json:"price"       binding:"required" example:"199.90"`
	Stock       *int   `json:"stock"       binding:"required" example:"10"`
	ImageURL    string `json:"image_url"   example:"/uploads/products/kb.png"`
}

// UpdateProductRequest payload of partial update. Empty fields are left
// untouched; stock is not updatable.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
}

// CacheKey is the read-cache key of a product.
func CacheKey(id string) string { return "product:" + CanonicalID(id) }
