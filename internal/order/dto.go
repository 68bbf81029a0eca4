package order

import "github.com/MikeMC777/ordenes-checkout/internal/listing"

// CreateOrderItem payload of a cart entry.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"2"`
}

// CreateOrderRequest payload of order placement. Items is validated by the
// service so an empty cart gets its own error.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Name    string            `json:"name"     binding:"required" example:"Ana Pérez"`
	Email   string            `json:"email"    binding:"required" example:"ana@example.com"`
	Contact string            `json:"contact"  binding:"required" example:"+57 300 000 0000"`
	Address string            `json:"address"  binding:"required" example:"Cra 7 # 12-34"`
	ZipCode string            `json:"zip_code" binding:"required" example:"110111"`
	City    string            `json:"city"     binding:"required" example:"Bogotá"`
	State   string            `json:"state"    binding:"required" example:"Cundinamarca"`
	Items   []CreateOrderItem `json:"items"`
}

func (r CreateOrderRequest) Customer() Customer {
	return Customer{
		Name:    r.Name,
		Email:   r.Email,
		Contact: r.Contact,
		Address: r.Address,
		ZipCode: r.ZipCode,
		City:    r.City,
		State:   r.State,
	}
}

func (r CreateOrderRequest) Cart() []CartItem {
	if len(r.Items) == 0 {
		return nil
	}
	out := make([]CartItem, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// UpdateStatusRequest payload of a status change.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"confirmed"`
}

// ListResponse is the paginated order listing.
// swagger:model OrderListResponse
type ListResponse struct {
	Orders     []Order            `json:"orders"`
	Pagination listing.Pagination `json:"pagination"`
}
