package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SampleCatalog is the demo catalog inserted by cmd/seed.
func SampleCatalog() []Product {
	mk := func(name, category, price string, stock int, description string) Product {
		return Product{
			ID:          uuid.NewString(),
			Name:        name,
			Category:    category,
			Price:       decimal.RequireFromString(price),
			Stock:       stock,
			Description: description,
			Active:      true,
		}
	}
	return []Product{
		mk(`MacBook Pro 16"`, "Electronics", "2499.99", 10, "16-inch laptop, 16GB RAM, 512GB SSD."),
		mk("iPhone 15 Pro", "Electronics", "999.99", 25, "128GB storage, 3x optical zoom."),
		mk("The Complete Guide to Node.js", "Books", "49.99", 50, "From fundamentals to deployment."),
		mk("Wireless Bluetooth Headphones", "Electronics", "199.99", 30, "Active noise cancellation, 30-hour battery."),
		mk("JavaScript: The Definitive Guide", "Books", "59.99", 20, "Reference covering ES2020 and beyond."),
		mk("Gaming Mechanical Keyboard", "Electronics", "149.99", 15, "RGB backlit, blue switches, aluminum frame."),
	}
}

// Seed inserts SampleCatalog when the products table has no rows at all and
// returns how many products were created.
func Seed(ctx context.Context, repo Repository) (int, error) {
	total, err := repo.CountAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if total > 0 {
		return 0, nil
	}
	n := 0
	for _, p := range SampleCatalog() {
		p := p
		if err := repo.Create(ctx, &p); err != nil {
			return n, fmt.Errorf("create %q: %w", p.Name, err)
		}
		n++
	}
	return n, nil
}
