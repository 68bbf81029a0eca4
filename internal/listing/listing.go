// Package listing holds the pagination and sort types shared by the
// product and order list endpoints.
package listing

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultSortField = "createdAt"
)

var ErrUnknownSortField = errors.New("unknown sort field")

type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page to >= 1 and the limit to (0, MaxLimit].
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

type Sort struct {
	Field string
	Desc  bool
}

// ParseSort reads the sortField/sortOrder pair. Anything other than "ASC"
// sorts descending.
func ParseSort(field, order string) Sort {
	field = strings.TrimSpace(field)
	if field == "" {
		field = DefaultSortField
	}
	return Sort{Field: field, Desc: !strings.EqualFold(strings.TrimSpace(order), "ASC")}
}

// Column resolves the sort field against a whitelist of API field -> column.
func (s Sort) Column(allowed map[string]string) (string, error) {
	field := s.Field
	if field == "" {
		field = DefaultSortField
	}
	col, ok := allowed[field]
	if !ok {
		return "", ErrUnknownSortField
	}
	return col, nil
}

// Direction renders the SQL direction keyword.
func (s Sort) Direction() string {
	if s.Desc {
		return "DESC"
	}
	return "ASC"
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewPagination(p Page, total int) Pagination {
	n := p.Normalize()
	return Pagination{
		Page:  n.Page,
		Limit: n.Limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(n.Limit))),
	}
}

// Where accumulates AND-ed SQL predicates with positional ($n) arguments.
type Where struct {
	conds []string
	args  []any
}

// Add appends a predicate; each %d in cond is replaced by the placeholder
// index of v.
func (w *Where) Add(cond string, v any) {
	w.args = append(w.args, v)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "%d", strconv.Itoa(len(w.args))))
}

// AddRaw appends a predicate that takes no argument.
func (w *Where) AddRaw(cond string) {
	w.conds = append(w.conds, cond)
}

// SQL renders the WHERE clause, or "" when empty.
func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *Where) Args() []any { return w.args }

// Next returns the next free placeholder index.
func (w *Where) Next() int { return len(w.args) + 1 }
