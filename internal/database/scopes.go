package database

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Pagination bounds
const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Trashed filter values
const (
	TrashedWith = "with"
	TrashedOnly = "only"
)

// ForTenant restricts a query to rows owned by the tenant.
func ForTenant(tenantID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: "tenant_id"},
			Value:  tenantID,
		})
	}
}

// ListQuery carries the DataTable parameters sent by the admin panel.
type ListQuery struct {
	Page      int
	PerPage   int
	Search    string
	SortBy    string
	SortOrder string
	Trashed   string
}

// Normalize clamps paging values and lower-cases the sort order.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	q.SortOrder = strings.ToLower(q.SortOrder)
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		q.SortOrder = "desc"
	}
	q.Search = strings.TrimSpace(q.Search)
}

// Paginate applies LIMIT/OFFSET for the requested page.
func Paginate(q ListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((q.Page - 1) * q.PerPage).Limit(q.PerPage)
	}
}

// Sort orders by q.SortBy when it is one of the allowed columns, otherwise by fallback.
func Sort(q ListQuery, allowed []string, fallback string) func(*gorm.DB) *gorm.DB {
	q.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		column := fallback
		for _, a := range allowed {
			if a == q.SortBy {
				column = a
				break
			}
		}
		return db.Order(clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: column},
			Desc:   q.SortOrder == "desc",
		})
	}
}

// Search matches the term against any of the columns with LIKE.
func Search(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		like := "%" + term + "%"
		exprs := make([]clause.Expression, 0, len(columns))
		for _, c := range columns {
			exprs = append(exprs, clause.Like{Column: clause.Column{Table: clause.CurrentTable, Name: c}, Value: like})
		}
		return db.Where(clause.Or(exprs...))
	}
}

// Trashed includes soft-deleted rows ("with") or returns only them ("only").
func Trashed(mode string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch mode {
		case TrashedWith:
			return db.Unscoped()
		case TrashedOnly:
			return db.Unscoped().Where(clause.Neq{
				Column: clause.Column{Table: clause.CurrentTable, Name: "deleted_at"},
				Value:  nil,
			})
		}
		return db
	}
}

// PageMeta describes the page returned to a DataTable.
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// Page is one page of rows plus its meta.
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// FindPage counts the rows matched by db and loads the requested page. The extra scopes
// (preloads, ordering) are only applied to the page query.
func FindPage[T any](db *gorm.DB, q ListQuery, extra ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	q.Normalize()
	base := db.Session(&gorm.Session{})

	var total int64
	if err := base.Model(new(T)).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count rows")
	}

	items := make([]T, 0, q.PerPage)
	if err := base.Scopes(extra...).Scopes(Paginate(q)).Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch rows")
	}

	lastPage := int(math.Ceil(float64(total) / float64(q.PerPage)))
	if lastPage < 1 {
		lastPage = 1
	}

	return &Page[T]{
		Data: items,
		Meta: PageMeta{CurrentPage: q.Page, PerPage: q.PerPage, Total: total, LastPage: lastPage},
	}, nil
}
