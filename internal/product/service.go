package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidPrice = errors.New("price must be a non-negative decimal")
	ErrInvalidStock = errors.New("stock must be zero or more")
	// ErrQueryTooShort is returned by Search for queries under MinQueryLen.
	ErrQueryTooShort = errors.New("query must have at least 2 characters")
)

const MinQueryLen = 2

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Version(ctx context.Context, key string) (int64, error)
	Fill(ctx context.Context, key string, version int64, v any) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
}

func NewService(repo Repository, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return d, nil
}

// Get returns an active product, reading through the cache.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	fill := false
	var version int64
	if s.cache != nil {
		var cached Product
		hit, err := s.cache.Get(ctx, CacheKey(id), &cached)
		if err != nil {
			s.logger.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
		if version, err = s.cache.Version(ctx, CacheKey(id)); err != nil {
			s.logger.Warn("product cache version read failed", zap.String("product_id", id), zap.Error(err))
		} else {
			fill = true
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fill {
		if err := s.cache.Fill(ctx, CacheKey(id), version, p); err != nil {
			s.logger.Warn("product cache write failed", zap.String("product_id", id), zap.Error(err))
		}
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, int, error) {
	return s.repo.List(ctx, f)
}

// Search matches q against name and description.
func (s *Service) Search(ctx context.Context, q string, f Filter) ([]Product, int, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < MinQueryLen {
		return nil, 0, ErrQueryTooShort
	}
	f.Search = q
	return s.repo.List(ctx, f)
}

// Create adds a product with its initial stock. Stock is only ever set here.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}
	if req.Stock == nil || *req.Stock < 0 {
		return nil, ErrInvalidStock
	}
	p := &Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Price:       price,
		Stock:       *req.Stock,
		ImageURL:    req.ImageURL,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.logger.Info("product created", zap.String("product_id", p.ID), zap.Int("stock", p.Stock))
	return p, nil
}

// Update applies a partial update and returns the fresh product.
func (s *Service) Update(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	p := &Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	updatePrice := strings.TrimSpace(req.Price) != ""
	if updatePrice {
		price, err := parsePrice(req.Price)
		if err != nil {
			return nil, err
		}
		p.Price = price
	}
	if err := s.repo.Update(ctx, p, updatePrice); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return s.repo.GetByID(ctx, id)
}

// Deactivate soft-deletes the product. Unknown or already inactive ids
// report ErrNotFound.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	ok, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.invalidate(ctx, id)
	s.logger.Info("product deactivated", zap.String("product_id", id))
	return nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CacheKey(id)); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.String("product_id", id), zap.Error(err))
	}
}
