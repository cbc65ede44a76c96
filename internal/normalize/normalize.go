// Package normalize turns scraped listing rows into canonical listings.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lukman83/ammo-bundler/internal/models"
)

// ErrMalformedRow marks a row that cannot become a usable listing.
var ErrMalformedRow = errors.New("malformed listing row")

// Listing converts one raw row. Rows without a retailer or without any
// derivable per-round price are malformed.
func Listing(row models.RawRow) (models.Listing, error) {
	retailer := StripMarkup(row.Retailer)
	if retailer == "" {
		return models.Listing{}, fmt.Errorf("%w: missing retailer", ErrMalformedRow)
	}

	price, ok := PricePerRound(row)
	if !ok {
		return models.Listing{}, fmt.Errorf("%w: no price for %q from %s", ErrMalformedRow, row.Title, retailer)
	}

	l := models.Listing{
		Retailer:       retailer,
		Title:          StripMarkup(row.Title),
		PricePerRound:  &price,
		ShippingRating: ParseShipping(row.Shipping),
		Manufacturer:   optional(StripMarkup(row.Manufacturer)),
		ProductURL:     optional(strings.TrimSpace(row.ProductURL)),
		CaseMaterial:   optional(strings.ToLower(StripMarkup(row.CaseMaterial))),
		Condition:      optional(strings.ToLower(StripMarkup(row.Condition))),
	}
	if w, ok := firstInt(StripMarkup(row.BulletWeight)); ok && w > 0 {
		l.BulletWeight = &w
	}
	return l, nil
}

// Batch normalizes rows, silently dropping malformed ones, then removes
// duplicate product URLs. It returns the surviving listings and how many rows
// were dropped as malformed.
func Batch(rows []models.RawRow) ([]models.Listing, int) {
	listings := make([]models.Listing, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		l, err := Listing(row)
		if err != nil {
			dropped++
			continue
		}
		listings = append(listings, l)
	}
	return Dedup(listings), dropped
}

// Dedup keeps the first listing for each product URL. Listings without a URL
// are always kept.
func Dedup(listings []models.Listing) []models.Listing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.ProductURL != nil {
			if _, dup := seen[*l.ProductURL]; dup {
				continue
			}
			seen[*l.ProductURL] = struct{}{}
		}
		out = append(out, l)
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
