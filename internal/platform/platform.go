package platform

import (
	"context"
	"errors"

	"github.com/lukman83/ammo-bundler/internal/models"
)

// ErrUnknownCaliber is returned when a caliber cannot be mapped to a source query.
var ErrUnknownCaliber = errors.New("unknown caliber")

// Query describes one item's listing search. MinShippingRating and
// Manufacturers are hints: the core re-applies both after normalization.
type Query struct {
	Caliber           string
	BulletWeight      *int
	SearchTerms       []string
	CaseMaterial      *string
	Condition         *string
	MinShippingRating *int
	MinQty            *int
	MaxQty            *int
	Manufacturers     []string
}

// QueryFor builds the source query for one requested item.
func QueryFor(item models.ItemRequest, minShipping int) Query {
	q := Query{
		Caliber:       item.Caliber,
		BulletWeight:  item.BulletWeight,
		SearchTerms:   item.SearchTerms,
		CaseMaterial:  item.CaseMaterial,
		Condition:     item.Condition,
		Manufacturers: item.Manufacturers,
	}
	if minShipping > 0 {
		q.MinShippingRating = &minShipping
	}
	if item.MinQty > 0 {
		q.MinQty = &item.MinQty
	}
	if item.MaxQty > 0 {
		q.MaxQty = &item.MaxQty
	}
	return q
}

// Result is what a single strategy produced for a query.
type Result struct {
	Rows     []models.RawRow
	Strategy string
}

// Strategy is one way of fetching listing rows (static HTML, JSON endpoint,
// headless browser).
type Strategy interface {
	Name() string
	Execute(ctx context.Context, q Query) (*Result, error)
}

// Source fetches raw listing rows for one item query. An empty slice means
// nothing usable came back.
type Source interface {
	Listings(ctx context.Context, q Query) ([]models.RawRow, error)
}

// CaliberResolver is implemented by sources that can reject a caliber before
// any fetch is attempted.
type CaliberResolver interface {
	ResolveCaliber(caliber string) (string, error)
}
