package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-checkout/internal/listing"
	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

const orderColumns = `id::text, name, email, contact, address, zip_code, city, state, total_amount::text, status, created_at, updated_at`

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

// WithTx runs fn at READ COMMITTED; stock rows are serialized by the row
// locks LockProducts takes, so concurrent placements cannot oversell.
func (s *PGStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) LockProducts(ctx context.Context, ids []string) (map[string]*product.Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if product.ValidID(id) {
			valid = append(valid, product.CanonicalID(id))
		}
	}
	out := make(map[string]*product.Product, len(valid))
	if len(valid) == 0 {
		return out, nil
	}
	// Ascending id order keeps lock acquisition deadlock-free across placements.
	sort.Strings(valid)
	rows, err := t.tx.Query(ctx, `
		SELECT `+product.Columns+`
		FROM products
		WHERE id = ANY($1::uuid[]) AND is_active
		ORDER BY id
		FOR UPDATE
	`, valid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := product.Scan(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (t *pgTx) SetStock(ctx context.Context, productID string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("set stock %s: negative stock %d", productID, stock)
	}
	tag, err := t.tx.Exec(ctx, `
		UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1
	`, productID, stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	if _, err := t.tx.Exec(ctx, `
    INSERT INTO orders (id, name, email, contact, address, zip_code, city, state, total_amount, status, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
  `, o.ID, o.Name, o.Email, o.Contact, o.Address, o.ZipCode, o.City, o.State,
		o.TotalAmount.String(), string(o.Status), o.CreatedAt, o.UpdatedAt); err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err := t.tx.Exec(ctx, `
      INSERT INTO order_items (id, order_id, product_id, quantity, price, created_at)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, it.ID, o.ID, it.ProductID, it.Quantity, it.Price.String(), it.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o      Order
		total  string
		status string
	)
	if err := row.Scan(&o.ID, &o.Name, &o.Email, &o.Contact, &o.Address, &o.ZipCode, &o.City, &o.State,
		&total, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total %q: %w", total, err)
	}
	o.TotalAmount = d
	o.Status = Status(status)
	o.Items = []Item{}
	return &o, nil
}

func (s *PGStore) GetByID(ctx context.Context, id string) (*Order, error) {
	if !product.ValidID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(s.db.QueryRow(ctx, `
    SELECT `+orderColumns+`
    FROM orders WHERE id=$1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, map[string]*Order{o.ID: o}); err != nil {
		return nil, err
	}
	return o, nil
}

// loadItems fills Items of every order in byID, in insertion order.
func (s *PGStore) loadItems(ctx context.Context, byID map[string]*Order) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	rows, err := s.db.Query(ctx, `
    SELECT id::text, order_id::text, product_id::text, quantity, price::text, created_at
    FROM order_items
    WHERE order_id = ANY($1::uuid[])
    ORDER BY created_at, seq
  `, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price, &it.CreatedAt); err != nil {
			return err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("parse item price %q: %w", price, err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	col, err := f.Sort.Column(SortColumns)
	if err != nil {
		return nil, 0, err
	}

	var w listing.Where
	if v := strings.TrimSpace(f.IDContains); v != "" {
		w.Add("id::text ILIKE '%' || $%d || '%'", v)
	}
	if v := strings.TrimSpace(f.NameContains); v != "" {
		w.Add("name ILIKE '%' || $%d || '%'", v)
	}
	if v := strings.TrimSpace(f.EmailContains); v != "" {
		w.Add("email ILIKE '%' || $%d || '%'", v)
	}
	if f.Status != "" {
		w.Add("status = $%d", string(f.Status))
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+w.SQL(), w.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	next := w.Next()
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		orderColumns, w.SQL(), col, f.Sort.Direction(), next, next+1)
	rows, err := s.db.Query(ctx, query, append(w.Args(), page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []*Order
	byID := map[string]*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	if err := s.loadItems(ctx, byID); err != nil {
		return nil, 0, err
	}
	out := make([]Order, 0, len(list))
	for _, o := range list {
		out = append(out, *o)
	}
	return out, total, nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !product.ValidID(id) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
    UPDATE orders
    SET status = $2, updated_at = NOW()
    WHERE id = $1
  `, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
