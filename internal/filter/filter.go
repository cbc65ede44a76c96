// Package filter selects the listings that satisfy one requested item.
package filter

import (
	"strings"

	"github.com/lukman83/ammo-bundler/internal/models"
)

// MeetsShippingThreshold is the single shipping rule used everywhere: a
// missing rating counts as 0, and the free shipping sentinel always passes.
func MeetsShippingThreshold(l models.Listing, threshold int) bool {
	if l.HasFreeShipping() {
		return true
	}
	return l.Shipping() >= threshold
}

// Matches reports whether l satisfies every constraint of item and the
// shipping threshold.
func Matches(item models.ItemRequest, l models.Listing, minShipping int) bool {
	// 1. Bullet weight
	if item.BulletWeight != nil {
		if l.BulletWeight == nil || *l.BulletWeight != *item.BulletWeight {
			return false
		}
	}

	// 2. Search terms
	if len(item.SearchTerms) > 0 {
		title := strings.ToLower(l.Title)
		for _, term := range item.SearchTerms {
			if !strings.Contains(title, strings.ToLower(term)) {
				return false
			}
		}
	}

	// 3. Case material and condition
	if !equalOptional(item.CaseMaterial, l.CaseMaterial) {
		return false
	}
	if !equalOptional(item.Condition, l.Condition) {
		return false
	}

	// 4. Manufacturer whitelist
	if len(item.Manufacturers) > 0 {
		if l.Manufacturer == nil || !containsFold(item.Manufacturers, *l.Manufacturer) {
			return false
		}
	}

	// 5. Shipping
	return MeetsShippingThreshold(l, minShipping)
}

// Apply returns the listings matching item, in input order.
func Apply(item models.ItemRequest, listings []models.Listing, minShipping int) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if Matches(item, l, minShipping) {
			out = append(out, l)
		}
	}
	return out
}

// equalOptional treats an unset or blank want as "no restriction". Listing
// values are stored lower-cased by the normalizer, so the request side is
// brought to the same form before the exact comparison.
func equalOptional(want, got *string) bool {
	if want == nil {
		return true
	}
	w := strings.ToLower(strings.TrimSpace(*want))
	if w == "" {
		return true
	}
	return got != nil && *got == w
}

func containsFold(set []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range set {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
