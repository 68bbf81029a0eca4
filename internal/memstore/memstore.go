// Package memstore keeps the catalog and the orders in memory. It satisfies
// product.Repository and order.Store; transactions are serialized on one
// mutex and staged until commit.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MikeMC777/ordenes-checkout/internal/order"
	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

type Store struct {
	mu       sync.Mutex
	products map[string]*product.Product
	orders   map[string]*order.Order
	now      func() time.Time

	failInsert error
}

func New() *Store {
	return &Store{
		products: make(map[string]*product.Product),
		orders:   make(map[string]*order.Order),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FailNextInsert makes the next InsertOrder inside a transaction fail with
// err, after stock has been staged.
func (s *Store) FailNextInsert(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failInsert = err
}

func copyProduct(p *product.Product) *product.Product {
	cp := *p
	return &cp
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.Item{}, o.Items...)
	return &cp
}

// ---- order.Store ----

type tx struct {
	s      *Store
	stock  map[string]int
	orders []*order.Order
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{s: s, stock: map[string]int{}}
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for id, n := range t.stock {
		p := s.products[id]
		p.Stock = n
		p.UpdatedAt = s.now()
	}
	for _, o := range t.orders {
		s.orders[o.ID] = o
	}
	return nil
}

func (t *tx) LockProducts(_ context.Context, ids []string) (map[string]*product.Product, error) {
	out := make(map[string]*product.Product, len(ids))
	for _, id := range ids {
		id = product.CanonicalID(id)
		if p, ok := t.s.products[id]; ok && p.Active {
			cp := copyProduct(p)
			if n, staged := t.stock[id]; staged {
				cp.Stock = n
			}
			out[id] = cp
		}
	}
	return out, nil
}

func (t *tx) SetStock(_ context.Context, productID string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("set stock %s: negative stock %d", productID, stock)
	}
	if _, ok := t.s.products[productID]; !ok {
		return product.ErrNotFound
	}
	t.stock[productID] = stock
	return nil
}

func (t *tx) InsertOrder(_ context.Context, o *order.Order) error {
	if err := t.s.failInsert; err != nil {
		t.s.failInsert = nil
		return err
	}
	if _, dup := t.s.orders[o.ID]; dup {
		return fmt.Errorf("insert order %s: duplicate id", o.ID)
	}
	t.orders = append(t.orders, copyOrder(o))
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[product.CanonicalID(id)]
	if !ok {
		return nil, order.ErrNotFound
	}
	return copyOrder(o), nil
}

func (s *Store) UpdateStatus(_ context.Context, id string, status order.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[product.CanonicalID(id)]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.now()
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

func (s *Store) List(_ context.Context, f order.Filter) ([]order.Order, int, error) {
	col, err := f.Sort.Column(order.SortColumns)
	if err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*order.Order
	for _, o := range s.orders {
		switch {
		case f.IDContains != "" && !containsFold(o.ID, f.IDContains):
		case f.NameContains != "" && !containsFold(o.Name, f.NameContains):
		case f.EmailContains != "" && !containsFold(o.Email, f.EmailContains):
		case f.Status != "" && o.Status != f.Status:
		default:
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		c := compareOrders(a, b, col)
		if c == 0 {
			return a.ID < b.ID
		}
		if f.Sort.Desc {
			return c > 0
		}
		return c < 0
	})

	out := []order.Order{}
	for _, o := range paginate(len(matched), f.Page.Offset(), f.Page.Normalize().Limit) {
		out = append(out, *copyOrder(matched[o]))
	}
	return out, len(matched), nil
}

func compareOrders(a, b *order.Order, col string) int {
	switch col {
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "total_amount":
		return a.TotalAmount.Cmp(b.TotalAmount)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// paginate returns the indexes in [offset, offset+limit) that exist.
func paginate(n, offset, limit int) []int {
	var idx []int
	for i := offset; i < n && i < offset+limit; i++ {
		idx = append(idx, i)
	}
	return idx
}

// ---- product.Repository ----

func (s *Store) Create(_ context.Context, p *product.Product) error {
	if p.Stock < 0 {
		return fmt.Errorf("create product: negative stock %d", p.Stock)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.products[p.ID]; dup {
		return fmt.Errorf("create product %s: duplicate id", p.ID)
	}
	now := s.now()
	p.Active = true
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = copyProduct(p)
	return nil
}

// Put stores p as is, including inactive products. Test fixtures use it.
func (s *Store) Put(p product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
		p.UpdatedAt = p.CreatedAt
	}
	s.products[p.ID] = &p
}

// Stock reports the quantity on hand of any product, active or not.
func (s *Store) Stock(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return 0, false
	}
	return p.Stock, true
}

func (s *Store) CountProducts(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products), nil
}

// OrderCount reports how many orders have been committed.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Store) GetProduct(_ context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[product.CanonicalID(id)]
	if !ok || !p.Active {
		return nil, product.ErrNotFound
	}
	return copyProduct(p), nil
}

func (s *Store) ListProducts(_ context.Context, f product.Filter) ([]product.Product, int, error) {
	col, err := f.Sort.Column(product.SortColumns)
	if err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := map[string]bool{}
	for _, id := range f.IDs {
		ids[product.CanonicalID(id)] = true
	}
	var matched []*product.Product
	for _, p := range s.products {
		switch {
		case !p.Active:
		case len(ids) > 0 && !ids[p.ID]:
		case f.NameContains != "" && !containsFold(p.Name, f.NameContains):
		case f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Description, f.Search):
		case f.Category != "" && p.Category != f.Category:
		default:
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		c := compareProducts(a, b, col)
		if c == 0 {
			return a.ID < b.ID
		}
		if f.Sort.Desc {
			return c > 0
		}
		return c < 0
	})

	out := []product.Product{}
	for _, i := range paginate(len(matched), f.Page.Offset(), f.Page.Normalize().Limit) {
		out = append(out, *copyProduct(matched[i]))
	}
	return out, len(matched), nil
}

func compareProducts(a, b *product.Product, col string) int {
	switch col {
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "price":
		return a.Price.Cmp(b.Price)
	case "stock":
		return a.Stock - b.Stock
	case "category":
		return strings.Compare(a.Category, b.Category)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (s *Store) Update(_ context.Context, p *product.Product, updatePrice bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.products[product.CanonicalID(p.ID)]
	if !ok || !cur.Active {
		return product.ErrNotFound
	}
	if p.Name != "" {
		cur.Name = p.Name
	}
	if p.Category != "" {
		cur.Category = p.Category
	}
	if p.Description != "" {
		cur.Description = p.Description
	}
	if p.ImageURL != "" {
		cur.ImageURL = p.ImageURL
	}
	if updatePrice {
		cur.Price = p.Price
	}
	cur.UpdatedAt = s.now()
	return nil
}

func (s *Store) Deactivate(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[product.CanonicalID(id)]
	if !ok || !p.Active {
		return false, nil
	}
	p.Active = false
	p.UpdatedAt = s.now()
	return true, nil
}

// Products adapts the store to product.Repository, whose GetByID and List
// would otherwise clash with the order.Store methods.
func (s *Store) Products() product.Repository { return productRepo{s} }

type productRepo struct{ s *Store }

func (r productRepo) Create(ctx context.Context, p *product.Product) error { return r.s.Create(ctx, p) }
func (r productRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.s.GetProduct(ctx, id)
}
func (r productRepo) List(ctx context.Context, f product.Filter) ([]product.Product, int, error) {
	return r.s.ListProducts(ctx, f)
}
func (r productRepo) Update(ctx context.Context, p *product.Product, updatePrice bool) error {
	return r.s.Update(ctx, p, updatePrice)
}
func (r productRepo) Deactivate(ctx context.Context, id string) (bool, error) {
	return r.s.Deactivate(ctx, id)
}
func (r productRepo) CountAll(ctx context.Context) (int, error) { return r.s.CountProducts(ctx) }
