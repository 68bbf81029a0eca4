package order_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/ordenes-checkout/internal/events"
	"github.com/MikeMC777/ordenes-checkout/internal/listing"
	"github.com/MikeMC777/ordenes-checkout/internal/memstore"
	"github.com/MikeMC777/ordenes-checkout/internal/order"
	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

var customer = order.Customer{
	Name:    "Ana Pérez",
	Email:   "ana@example.com",
	Contact: "+57 300 000 0000",
	Address: "Cra 7 # 12-34",
	ZipCode: "110111",
	City:    "Bogotá",
	State:   "Cundinamarca",
}

func seedProduct(t *testing.T, st *memstore.Store, name, price string, stock int) string {
	t.Helper()
	id := uuid.NewString()
	st.Put(product.Product{
		ID:       id,
		Name:     name,
		Category: "Electronics",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Active:   true,
	})
	return id
}

func stockOf(t *testing.T, st *memstore.Store, id string) int {
	t.Helper()
	n, ok := st.Stock(id)
	require.True(t, ok, "product %s missing", id)
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestPlaceOrder_TotalAndPendingStatus(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "Keyboard", "100", 10)
	p2 := seedProduct(t, st, "Mouse", "50", 10)
	svc := order.NewService(st)

	sum, err := svc.PlaceOrder(ctx, customer, []order.CartItem{
		{ProductID: p1, Quantity: 2},
		{ProductID: p2, Quantity: 1},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sum.ID)
	assert.True(t, sum.TotalAmount.Equal(decimal.NewFromInt(250)), "total=%s", sum.TotalAmount)
	assert.Equal(t, order.StatusPending, sum.Status)

	got, err := svc.GetOrder(ctx, sum.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, p1, got.Items[0].ProductID)
	assert.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, sum.ID, got.Items[1].OrderID)
	assert.Equal(t, customer, got.Customer)
}

func TestPlaceOrder_StockConservation(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "10.00", 7)
	p2 := seedProduct(t, st, "B", "20.00", 3)
	untouched := seedProduct(t, st, "C", "5.00", 9)
	svc := order.NewService(st)

	_, err := svc.PlaceOrder(ctx, customer, []order.CartItem{
		{ProductID: p1, Quantity: 4},
		{ProductID: p2, Quantity: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, stockOf(t, st, p1))
	assert.Equal(t, 0, stockOf(t, st, p2))
	assert.Equal(t, 9, stockOf(t, st, untouched))
}

func TestPlaceOrder_RepeatedProductDecrementsSequentially(t *testing.T) {
	ctx := context.Background()

	t.Run("second occurrence sees reduced stock", func(t *testing.T) {
		st := memstore.New()
		p1 := seedProduct(t, st, "Headset", "30", 4)
		svc := order.NewService(st)

		_, err := svc.PlaceOrder(ctx, customer, []order.CartItem{
			{ProductID: p1, Quantity: 2},
			{ProductID: p1, Quantity: 3},
		})

		var insufficient *order.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "Headset", insufficient.ProductName)
		assert.Equal(t, 4, stockOf(t, st, p1))
		assert.Zero(t, st.OrderCount())
	})

	t.Run("both occurrences fit", func(t *testing.T) {
		st := memstore.New()
		p1 := seedProduct(t, st, "Headset", "30", 6)
		svc := order.NewService(st)

		sum, err := svc.PlaceOrder(ctx, customer, []order.CartItem{
			{ProductID: p1, Quantity: 2},
			{ProductID: p1, Quantity: 3},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, stockOf(t, st, p1))
		assert.True(t, sum.TotalAmount.Equal(decimal.NewFromInt(150)))

		got, err := svc.GetOrder(ctx, sum.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 2)
	})

	t.Run("repeat drains to zero then out of stock", func(t *testing.T) {
		st := memstore.New()
		p1 := seedProduct(t, st, "Cable", "3", 2)
		svc := order.NewService(st)

		_, err := svc.PlaceOrder(ctx, customer, []order.CartItem{
			{ProductID: p1, Quantity: 2},
			{ProductID: p1, Quantity: 1},
		})
		var oos *order.OutOfStockError
		require.ErrorAs(t, err, &oos)
		assert.Equal(t, 2, stockOf(t, st, p1))
	})
}

func TestPlaceOrder_MissingProductRollsBack(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "10", 10)
	missing := uuid.NewString()
	svc := order.NewService(st)

	_, err := svc.PlaceOrder(ctx, customer, []order.CartItem{
		{ProductID: p1, Quantity: 2},
		{ProductID: missing, Quantity: 1},
	})

	var notFound *order.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.ProductID)
	assert.Contains(t, err.Error(), missing)
	assert.Equal(t, 10, stockOf(t, st, p1))
	assert.Zero(t, st.OrderCount())
}

func TestPlaceOrder_InactiveProductIsNotFound(t *testing.T) {
	st := memstore.New()
	id := uuid.NewString()
	st.Put(product.Product{ID: id, Name: "Retired", Price: decimal.NewFromInt(5), Stock: 5, Active: false})
	svc := order.NewService(st)

	_, err := svc.PlaceOrder(context.Background(), customer, []order.CartItem{{ProductID: id, Quantity: 1}})

	var notFound *order.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 5, stockOf(t, st, id))
}

func TestPlaceOrder_ZeroVersusLowStock(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	empty := seedProduct(t, st, "Empty", "1", 0)
	low := seedProduct(t, st, "Low", "1", 1)
	svc := order.NewService(st)

	_, err := svc.PlaceOrder(ctx, customer, []order.CartItem{{ProductID: empty, Quantity: 1}})
	var oos *order.OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, "Empty", oos.ProductName)
	assert.EqualError(t, err, "out of stock for product Empty")

	_, err = svc.PlaceOrder(ctx, customer, []order.CartItem{{ProductID: low, Quantity: 2}})
	var insufficient *order.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.False(t, errors.As(err, &oos))
	assert.EqualError(t, err, "insufficient stock for product Low")
	assert.Equal(t, 1, stockOf(t, st, low))
}

func TestPlaceOrder_FirstFailureInCartOrderWins(t *testing.T) {
	st := memstore.New()
	empty := seedProduct(t, st, "Empty", "1", 0)
	svc := order.NewService(st)

	_, err := svc.PlaceOrder(context.Background(), customer, []order.CartItem{
		{ProductID: empty, Quantity: 1},
		{ProductID: uuid.NewString(), Quantity: 1},
	})
	var oos *order.OutOfStockError
	assert.ErrorAs(t, err, &oos)
}

// failingStore fails the test if placement ever reaches storage.
type failingStore struct {
	order.Store
	t *testing.T
}

func (f failingStore) WithTx(context.Context, func(context.Context, order.Tx) error) error {
	f.t.Fatal("storage must not be touched")
	return nil
}

func TestPlaceOrder_EmptyCartDoesNotTouchStorage(t *testing.T) {
	svc := order.NewService(failingStore{t: t})

	_, err := svc.PlaceOrder(context.Background(), customer, []order.CartItem{})
	assert.ErrorIs(t, err, order.ErrEmptyCart)

	_, err = svc.PlaceOrder(context.Background(), customer, nil)
	assert.ErrorIs(t, err, order.ErrEmptyCart)
	assert.True(t, order.IsUserError(err))
}

func TestPlaceOrder_NonPositiveQuantityRejected(t *testing.T) {
	svc := order.NewService(failingStore{t: t})

	for _, q := range []int{0, -2} {
		_, err := svc.PlaceOrder(context.Background(), customer, []order.CartItem{{ProductID: "p", Quantity: q}})
		var bad *order.InvalidQuantityError
		require.ErrorAs(t, err, &bad)
		assert.Equal(t, q, bad.Quantity)
	}
}

func TestPlaceOrder_StorageFailureIsOpaqueAndRollsBack(t *testing.T) {
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "10", 10)
	boom := errors.New("disk on fire")
	st.FailNextInsert(boom)
	pub := &recordingPublisher{}
	svc := order.NewService(st, order.WithPublisher(pub))

	_, err := svc.PlaceOrder(context.Background(), customer, []order.CartItem{{ProductID: p1, Quantity: 3}})

	var storageErr *order.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.ErrorIs(t, err, boom)
	assert.NotContains(t, err.Error(), "disk on fire")
	assert.False(t, order.IsUserError(err))
	assert.Equal(t, 10, stockOf(t, st, p1))
	assert.Zero(t, st.OrderCount())
	assert.Empty(t, pub.events)
}

func TestPlaceOrder_ResubmissionIsANewOrder(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "10", 10)
	svc := order.NewService(st)
	cart := []order.CartItem{{ProductID: p1, Quantity: 1}}

	first, err := svc.PlaceOrder(ctx, customer, cart)
	require.NoError(t, err)
	second, err := svc.PlaceOrder(ctx, customer, cart)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 8, stockOf(t, st, p1))
	assert.Equal(t, 2, st.OrderCount())
}

func TestPlaceOrder_PriceSnapshotSurvivesPriceChange(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "10.00", 10)
	svc := order.NewService(st)

	sum, err := svc.PlaceOrder(ctx, customer, []order.CartItem{{ProductID: p1, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, st.Products().Update(ctx, &product.Product{ID: p1, Price: decimal.RequireFromString("99.00")}, true))

	got, err := svc.GetOrder(ctx, sum.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("10.00")))
}

func TestPlaceOrder_ConcurrentPlacementsNeverOversell(t *testing.T) {
	st := memstore.New()
	p1 := seedProduct(t, st, "Hot item", "1", 10)
	svc := order.NewService(st)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), customer, []order.CartItem{{ProductID: p1, Quantity: 1}})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, success)
	assert.Equal(t, 0, stockOf(t, st, p1))
	assert.Equal(t, 10, st.OrderCount())
}

func TestPlaceOrder_PublishesOrderPlaced(t *testing.T) {
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "10", 10)
	pub := &recordingPublisher{}
	svc := order.NewService(st, order.WithPublisher(pub))

	sum, err := svc.PlaceOrder(context.Background(), customer, []order.CartItem{{ProductID: p1, Quantity: 1}})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.OrderPlaced, pub.events[0].Type)
	assert.Equal(t, sum.ID, pub.events[0].Key)
}

func TestGetOrder_ReadsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "12.50", 10)
	svc := order.NewService(st)
	sum, err := svc.PlaceOrder(ctx, customer, []order.CartItem{{ProductID: p1, Quantity: 2}})
	require.NoError(t, err)

	first, err := svc.GetOrder(ctx, sum.ID)
	require.NoError(t, err)
	second, err := svc.GetOrder(ctx, sum.ID)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestGetOrder_CachedReadMatchesStoreRead(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "12.50", 10)
	c := newMemCache()
	svc := order.NewService(st, order.WithCache(c))
	sum, err := svc.PlaceOrder(ctx, customer, []order.CartItem{{ProductID: p1, Quantity: 2}})
	require.NoError(t, err)

	fromStore, err := svc.GetOrder(ctx, sum.ID)
	require.NoError(t, err)
	_, cached := c.data[order.OrderKey(sum.ID)]
	require.True(t, cached)
	fromCache, err := svc.GetOrder(ctx, sum.ID)
	require.NoError(t, err)

	a, err := json.Marshal(fromStore)
	require.NoError(t, err)
	b, err := json.Marshal(fromCache)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

// pausingStore blocks the first GetByID after it has read the order, until
// resume is closed.
type pausingStore struct {
	order.Store
	paused atomic.Bool
	read   chan struct{}
	resume chan struct{}
}

func (s *pausingStore) GetByID(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.Store.GetByID(ctx, id)
	if s.paused.CompareAndSwap(false, true) {
		close(s.read)
		<-s.resume
	}
	return o, err
}

func TestGetOrder_DoesNotCacheStatusOverwrittenMidRead(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "1", 5)
	sum, err := order.NewService(st).PlaceOrder(ctx, customer, []order.CartItem{{ProductID: p1, Quantity: 1}})
	require.NoError(t, err)

	ps := &pausingStore{Store: st, read: make(chan struct{}), resume: make(chan struct{})}
	svc := order.NewService(ps, order.WithCache(newMemCache()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.GetOrder(ctx, sum.ID)
	}()
	<-ps.read
	require.NoError(t, svc.SetStatus(ctx, sum.ID, order.StatusConfirmed))
	close(ps.resume)
	<-done

	got, err := svc.GetOrder(ctx, sum.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status)
}

func TestPlaceOrder_MatchesUppercaseProductIDs(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "10", 5)
	svc := order.NewService(st)

	sum, err := svc.PlaceOrder(ctx, customer, []order.CartItem{
		{ProductID: strings.ToUpper(p1), Quantity: 2},
		{ProductID: p1, Quantity: 1},
	})
	require.NoError(t, err)
	assert.True(t, sum.TotalAmount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 2, stockOf(t, st, p1))

	got, err := svc.GetOrder(ctx, strings.ToUpper(sum.ID))
	require.NoError(t, err)
	for _, it := range got.Items {
		assert.Equal(t, p1, it.ProductID)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := order.NewService(memstore.New())
	_, err := svc.GetOrder(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestSetStatus_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "1", 5)
	pub := &recordingPublisher{}
	svc := order.NewService(st, order.WithPublisher(pub))
	sum, err := svc.PlaceOrder(ctx, customer, []order.CartItem{{ProductID: p1, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, sum.ID, order.StatusConfirmed))

	got, err := svc.GetOrder(ctx, sum.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status)
	require.Len(t, pub.events, 2)
	assert.Equal(t, events.OrderStatusChanged, pub.events[1].Type)
}

func TestSetStatus_IsPermissive(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "1", 5)
	svc := order.NewService(st)
	sum, err := svc.PlaceOrder(ctx, customer, []order.CartItem{{ProductID: p1, Quantity: 1}})
	require.NoError(t, err)

	for _, s := range []order.Status{order.StatusDelivered, order.StatusPending, order.StatusCancelled, order.StatusShipped} {
		require.NoError(t, svc.SetStatus(ctx, sum.ID, s))
		got, err := svc.GetOrder(ctx, sum.ID)
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}
	assert.Equal(t, 4, stockOf(t, st, p1))
}

func TestSetStatus_UnknownOrderLeavesNoTrace(t *testing.T) {
	st := memstore.New()
	pub := &recordingPublisher{}
	svc := order.NewService(st, order.WithPublisher(pub))

	err := svc.SetStatus(context.Background(), uuid.NewString(), order.StatusShipped)

	assert.ErrorIs(t, err, order.ErrNotFound)
	assert.Zero(t, st.OrderCount())
	assert.Empty(t, pub.events)
}

func TestSetStatus_RejectsUnknownValue(t *testing.T) {
	svc := order.NewService(failingStore{t: t})
	err := svc.SetStatus(context.Background(), uuid.NewString(), order.Status("paid"))
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}

func TestListOrders_FiltersSortAndPaginates(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "10", 100)
	svc := order.NewService(st)

	names := []string{"Ana", "Bruno", "Anabel"}
	ids := map[string]string{}
	for i, n := range names {
		c := customer
		c.Name = n
		c.Email = n + "@example.com"
		sum, err := svc.PlaceOrder(ctx, c, []order.CartItem{{ProductID: p1, Quantity: i + 1}})
		require.NoError(t, err)
		ids[n] = sum.ID
	}
	require.NoError(t, svc.SetStatus(ctx, ids["Bruno"], order.StatusShipped))

	got, total, err := svc.ListOrders(ctx, order.Filter{
		NameContains: "ana",
		Sort:         listing.Sort{Field: "totalAmount", Desc: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, "Anabel", got[0].Name)
	assert.Equal(t, "Ana", got[1].Name)

	got, total, err = svc.ListOrders(ctx, order.Filter{Status: order.StatusShipped})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, ids["Bruno"], got[0].ID)

	got, total, err = svc.ListOrders(ctx, order.Filter{
		EmailContains: "example.com",
		Page:          listing.Page{Page: 2, Limit: 2},
		Sort:          listing.Sort{Field: "name"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 1)
	assert.Equal(t, "Bruno", got[0].Name)

	got, _, err = svc.ListOrders(ctx, order.Filter{IDContains: ids["Ana"][:8]})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Contains(t, got[0].ID, ids["Ana"][:8])
}

func TestListOrders_RejectsBadSortAndStatus(t *testing.T) {
	svc := order.NewService(failingStore{t: t})

	_, _, err := svc.ListOrders(context.Background(), order.Filter{Sort: listing.Sort{Field: "password"}})
	assert.ErrorIs(t, err, listing.ErrUnknownSortField)

	_, _, err = svc.ListOrders(context.Background(), order.Filter{Status: "lost"})
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}

type memCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	versions map[string]int64
	deleted  []string
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, versions: map[string]int64{}}
}

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Version(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key], nil
}

func (c *memCache) Fill(_ context.Context, key string, version int64, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[key] != version {
		return nil
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.versions[k]++
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func TestCache_InvalidatedAfterCommit(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "10", 10)
	c := newMemCache()
	svc := order.NewService(st, order.WithCache(c))

	sum, err := svc.PlaceOrder(ctx, customer, []order.CartItem{{ProductID: p1, Quantity: 1}, {ProductID: p1, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{product.CacheKey(p1)}, c.deleted)

	_, err = svc.GetOrder(ctx, sum.ID)
	require.NoError(t, err)
	_, cached := c.data[order.OrderKey(sum.ID)]
	assert.True(t, cached)

	require.NoError(t, svc.SetStatus(ctx, sum.ID, order.StatusCancelled))
	_, cached = c.data[order.OrderKey(sum.ID)]
	assert.False(t, cached)

	got, err := svc.GetOrder(ctx, sum.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
}

func TestCache_NotTouchedOnRejection(t *testing.T) {
	st := memstore.New()
	p1 := seedProduct(t, st, "A", "10", 1)
	c := newMemCache()
	svc := order.NewService(st, order.WithCache(c))

	_, err := svc.PlaceOrder(context.Background(), customer, []order.CartItem{{ProductID: p1, Quantity: 5}})
	require.Error(t, err)
	assert.Empty(t, c.deleted)
}
