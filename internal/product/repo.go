// Package product provides the catalog model, the repository interface and
// its PostgreSQL implementation.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-checkout/internal/listing"
)

var (
	ErrNotFound = errors.New("product not found")
)

// SortColumns maps the accepted sortField values to columns.
var SortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
	"category":  "category",
}

// Filter selects active products. Zero-valued fields do not filter.
type Filter struct {
	IDs          []string
	NameContains string
	Category     string
	// Search matches name or description, case-insensitively.
	Search string
	Page   listing.Page
	Sort   listing.Sort
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, f Filter) ([]Product, int, error)
	Update(ctx context.Context, p *Product, updatePrice bool) error
	Deactivate(ctx context.Context, id string) (bool, error)
	// CountAll counts every product row, inactive ones included.
	CountAll(ctx context.Context) (int, error)
}

// Columns is the select list understood by Scan.
const Columns = `id::text, name, category, description, price::text, stock, image_url, is_active, created_at, updated_at`

// Scan reads one row selected with Columns.
func Scan(row pgx.Row) (*Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &price, &p.Stock,
		&p.ImageURL, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price = d
	return &p, nil
}

// ValidID reports whether id can be a product key. Anything else can never
// match a row, so callers treat it as not found.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// CanonicalID returns the lowercase hyphenated form of a uuid id, the form
// Postgres reports it in. Ids that are not uuids are returned unchanged.
func CanonicalID(id string) string {
	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return u.String()
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, category, description, price, stock, image_url, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE,NOW(),NOW())
		RETURNING is_active, created_at, updated_at
	`, p.ID, p.Name, p.Category, p.Description, p.Price.String(), p.Stock, p.ImageURL).
		Scan(&p.Active, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := Scan(r.db.QueryRow(ctx, `
		SELECT `+Columns+`
		FROM products WHERE id=$1 AND is_active
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Product, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	col, err := f.Sort.Column(SortColumns)
	if err != nil {
		return nil, 0, err
	}

	var w listing.Where
	w.AddRaw("is_active")
	if len(f.IDs) > 0 {
		ids := make([]string, 0, len(f.IDs))
		for _, id := range f.IDs {
			if ValidID(id) {
				ids = append(ids, CanonicalID(id))
			}
		}
		w.Add("id = ANY($%d::uuid[])", ids)
	}
	if s := strings.TrimSpace(f.NameContains); s != "" {
		w.Add("name ILIKE '%' || $%d || '%'", s)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		w.Add("(name ILIKE '%' || $%d || '%' OR description ILIKE '%' || $%d || '%')", s)
	}
	if f.Category != "" {
		w.Add("category = $%d", f.Category)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+w.SQL(), w.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	next := w.Next()
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		Columns, w.SQL(), col, f.Sort.Direction(), next, next+1)
	rows, err := r.db.Query(ctx, query, append(w.Args(), page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := Scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// Update applies a partial update to an active product. Empty strings keep
// the current value. Stock is never written here.
func (r *PGRepo) Update(ctx context.Context, p *Product, updatePrice bool) error {
	if !ValidID(p.ID) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var price any
	if updatePrice {
		price = p.Price.String()
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = COALESCE(NULLIF($2,''), name),
		    category = COALESCE(NULLIF($3,''), category),
		    description = COALESCE(NULLIF($4,''), description),
		    image_url = COALESCE(NULLIF($5,''), image_url),
		    price = COALESCE($6::numeric, price),
		    updated_at = NOW()
		WHERE id = $1 AND is_active
	`, p.ID, p.Name, p.Category, p.Description, p.ImageURL, price)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes a product; it disappears from reads and checkout.
func (r *PGRepo) Deactivate(ctx context.Context, id string) (bool, error) {
	if !ValidID(id) {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id=$1 AND is_active`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) CountAll(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
