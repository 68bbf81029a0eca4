package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrEmptyCart     = errors.New("shopping cart is empty")
	ErrInvalidStatus = errors.New("invalid order status")
)

// ProductNotFoundError is returned when a cart entry names a product that
// does not exist or is inactive.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// OutOfStockError is returned when the product has no stock at all.
type OutOfStockError struct {
	ProductName string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("out of stock for product %s", e.ProductName)
}

// InsufficientStockError is returned when some, but not enough, stock remains.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductName)
}

type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Quantity, e.ProductID)
}

// StorageError wraps any unclassified failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": storage failure" }

func (e *StorageError) Unwrap() error { return e.Err }

// IsUserError reports whether err is a caller-correctable cart failure.
func IsUserError(err error) bool {
	var (
		notFound     *ProductNotFoundError
		outOfStock   *OutOfStockError
		insufficient *InsufficientStockError
		badQty       *InvalidQuantityError
	)
	return errors.Is(err, ErrEmptyCart) ||
		errors.As(err, &notFound) ||
		errors.As(err, &outOfStock) ||
		errors.As(err, &insufficient) ||
		errors.As(err, &badQty)
}
