package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer holds the contact and shipping fields of an order. They are
// opaque to checkout; presence is validated at the transport edge.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
	Address string `json:"address"`
	ZipCode string `json:"zip_code"`
	City    string `json:"city"`
	State   string `json:"state"`
}

type Order struct {
	ID string `json:"id"`
	Customer
	// TotalAmount is always computed from the line items at placement.
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Items       []Item          `json:"items"`
}

// Item is a line item: a snapshot of the product price at purchase time.
type Item struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// CartItem is one (product, quantity) entry submitted for placement.
type CartItem struct {
	ProductID string
	Quantity  int
}

// Summary is what a successful placement returns.
type Summary struct {
	ID          string          `json:"id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
}

func (o *Order) Summary() Summary {
	return Summary{ID: o.ID, TotalAmount: o.TotalAmount, Status: o.Status}
}
