package order

import (
	"context"

	"github.com/MikeMC777/ordenes-checkout/internal/listing"
	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

// SortColumns maps the accepted sortField values to columns.
var SortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"totalAmount": "total_amount",
	"name":        "name",
	"email":       "email",
	"status":      "status",
}

// Filter is the typed order listing predicate. Zero-valued fields do not
// filter; the *Contains fields are case-insensitive partial matches.
type Filter struct {
	IDContains    string
	NameContains  string
	EmailContains string
	Status        Status
	Page          listing.Page
	Sort          listing.Sort
}

// Tx is the unit of work a placement runs in. Nothing written through it is
// visible to others until the enclosing Store.WithTx commits.
type Tx interface {
	// LockProducts reads and locks the active products among ids. Missing
	// or inactive ids are absent from the result.
	LockProducts(ctx context.Context, ids []string) (map[string]*product.Product, error)
	SetStock(ctx context.Context, productID string, stock int) error
	InsertOrder(ctx context.Context, o *Order) error
}

type Store interface {
	// WithTx runs fn in one transaction, committing only if fn returns nil.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
