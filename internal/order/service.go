package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/MikeMC777/ordenes-checkout/internal/events"
	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

const tracerName = "github.com/MikeMC777/ordenes-checkout/internal/order"

// Cache is the read-through cache used for order reads. Keys follow
// OrderKey and product.CacheKey. Fill must drop values whose version was
// bumped by a Delete after it was taken.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Version(ctx context.Context, key string) (int64, error)
	Fill(ctx context.Context, key string, version int64, v any) error
	Delete(ctx context.Context, keys ...string) error
}

func OrderKey(id string) string { return "order:" + product.CanonicalID(id) }

type Service struct {
	store  Store
	cache  Cache
	events events.Publisher
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.events = p } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		events: events.Nop{},
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder validates the cart, reserves stock and persists the priced
// order as one transaction. Cart failures come back as their typed errors;
// anything else is a *StorageError.
func (s *Service) PlaceOrder(ctx context.Context, customer Customer, cart []CartItem) (*Summary, error) {
	ctx, span := s.tracer.Start(ctx, "order.place")
	defer span.End()
	span.SetAttributes(attribute.Int("order.cart_entries", len(cart)))

	if len(cart) == 0 {
		span.SetStatus(codes.Error, ErrEmptyCart.Error())
		return nil, ErrEmptyCart
	}
	for _, it := range cart {
		if it.Quantity <= 0 {
			err := &InvalidQuantityError{ProductID: it.ProductID, Quantity: it.Quantity}
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	var placed *Order
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := s.place(ctx, tx, customer, cart)
		if err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if IsUserError(err) {
			s.logger.Info("order rejected", zap.Error(err))
			return nil, err
		}
		s.logger.Error("place order failed", zap.Error(err), zap.Int("cart_entries", len(cart)))
		return nil, &StorageError{Op: "place order", Err: err}
	}

	span.SetAttributes(
		attribute.String("order.id", placed.ID),
		attribute.String("order.total", placed.TotalAmount.String()),
	)
	s.logger.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.String("total", placed.TotalAmount.String()),
		zap.Int("items", len(placed.Items)))

	s.invalidate(ctx, placedProductKeys(placed)...)
	s.publish(ctx, events.OrderPlaced, placed.ID, placed)

	sum := placed.Summary()
	return &sum, nil
}

// place is the transaction body. Every distinct product is locked up front;
// entries are then checked strictly in cart order against the working set,
// so a repeated product sees the stock left by its earlier occurrence.
func (s *Service) place(ctx context.Context, tx Tx, customer Customer, cart []CartItem) (*Order, error) {
	ids := make([]string, 0, len(cart))
	seen := make(map[string]bool, len(cart))
	for _, it := range cart {
		id := product.CanonicalID(it.ProductID)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	working, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &Order{
		ID:        s.newID(),
		Customer:  customer,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     make([]Item, 0, len(cart)),
	}
	total := decimal.Zero
	for _, it := range cart {
		p, ok := working[product.CanonicalID(it.ProductID)]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: it.ProductID}
		}
		if p.Stock == 0 {
			return nil, &OutOfStockError{ProductName: p.Name}
		}
		if p.Stock < it.Quantity {
			return nil, &InsufficientStockError{ProductName: p.Name}
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		o.Items = append(o.Items, Item{
			ID:        s.newID(),
			OrderID:   o.ID,
			ProductID: p.ID,
			Quantity:  it.Quantity,
			Price:     p.Price,
			CreatedAt: now,
		})
		p.Stock -= it.Quantity
	}
	o.TotalAmount = total

	for _, id := range ids {
		if err := tx.SetStock(ctx, id, working[id].Stock); err != nil {
			return nil, err
		}
	}
	if err := tx.InsertOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// SetStatus overwrites the order status. Any of the five lifecycle values
// may follow any other.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) error {
	ctx, span := s.tracer.Start(ctx, "order.set_status")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id), attribute.String("order.status", string(status)))

	if !status.Valid() {
		span.SetStatus(codes.Error, ErrInvalidStatus.Error())
		return ErrInvalidStatus
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("update order status failed", zap.String("order_id", id), zap.Error(err))
		return &StorageError{Op: "set status", Err: err}
	}

	s.logger.Info("order status updated", zap.String("order_id", id), zap.String("status", string(status)))
	s.invalidate(ctx, OrderKey(id))
	s.publish(ctx, events.OrderStatusChanged, id, map[string]string{"id": id, "status": string(status)})
	return nil
}

// GetOrder returns the order with its line items.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	fill := false
	var version int64
	if s.cache != nil {
		var cached Order
		hit, err := s.cache.Get(ctx, OrderKey(id), &cached)
		if err != nil {
			s.logger.Warn("order cache read failed", zap.String("order_id", id), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
		if version, err = s.cache.Version(ctx, OrderKey(id)); err != nil {
			s.logger.Warn("order cache version read failed", zap.String("order_id", id), zap.Error(err))
		} else {
			fill = true
		}
	}

	o, err := s.store.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("get order failed", zap.String("order_id", id), zap.Error(err))
		return nil, &StorageError{Op: "get order", Err: err}
	}

	if fill {
		if err := s.cache.Fill(ctx, OrderKey(id), version, o); err != nil {
			s.logger.Warn("order cache write failed", zap.String("order_id", id), zap.Error(err))
		}
	}
	return o, nil
}

// ListOrders returns one page of orders matching f and the total match count.
func (s *Service) ListOrders(ctx context.Context, f Filter) ([]Order, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if _, err := f.Sort.Column(SortColumns); err != nil {
		return nil, 0, err
	}
	out, total, err := s.store.List(ctx, f)
	if err != nil {
		s.logger.Error("list orders failed", zap.Error(err))
		return nil, 0, &StorageError{Op: "list orders", Err: err}
	}
	return out, total, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil || len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, typ, key string, payload any) {
	if err := s.events.Publish(ctx, events.Event{Type: typ, Key: key, Payload: payload}); err != nil {
		s.logger.Warn("publish event failed", zap.String("type", typ), zap.String("key", key), zap.Error(err))
	}
}

func placedProductKeys(o *Order) []string {
	keys := make([]string, 0, len(o.Items))
	seen := map[string]bool{}
	for _, it := range o.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			keys = append(keys, product.CacheKey(it.ProductID))
		}
	}
	return keys
}
