// Command seed applies the schema and loads the sample catalog into an
// empty products table.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/ordenes-checkout/internal/config"
	"github.com/MikeMC777/ordenes-checkout/internal/db"
	"github.com/MikeMC777/ordenes-checkout/internal/observability"
	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := config.Load()
	logger := observability.NewLogger("seed", cfg.LogLevel, false)
	defer func() { _ = logger.Sync() }()

	pool, err := db.Connect(ctx, cfg.PostgresDSN, 2)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("failed to migrate", zap.Error(err))
	}

	n, err := product.Seed(ctx, product.NewPGRepo(pool))
	if err != nil {
		logger.Fatal("failed to seed catalog", zap.Error(err))
	}
	if n == 0 {
		logger.Info("catalog already populated, nothing to do")
		return
	}
	logger.Info("catalog seeded", zap.Int("products", n))
}
