package models

import (
	"fmt"
	"strings"
)

// FreeShipping is the shipping rating reserved for verified free shipping.
// It satisfies every shipping threshold.
const FreeShipping = 10

// MaxShippingRating is the highest threshold a request may ask for.
const MaxShippingRating = 10

// ItemRequest is one line of the shopping list.
type ItemRequest struct {
	Caliber       string   `json:"caliber"`
	MinQty        int      `json:"min_qty"`
	MaxQty        int      `json:"max_qty"`
	BulletWeight  *int     `json:"bullet_weight,omitempty"`
	SearchTerms   []string `json:"search_terms,omitempty"`
	CaseMaterial  *string  `json:"case_material,omitempty"`
	Condition     *string  `json:"condition,omitempty"`
	Manufacturers []string `json:"manufacturers,omitempty"`
}

// BundleRequest is the whole shopping list.
type BundleRequest struct {
	Items             []ItemRequest `json:"items"`
	MinShippingRating int           `json:"min_shipping_rating"`
}

// RawRow is a listing row as scraped, before normalization. All values are
// kept as the source rendered them.
type RawRow struct {
	Retailer      string `json:"retailer"`
	Manufacturer  string `json:"manufacturer,omitempty"`
	Title         string `json:"title"`
	ProductURL    string `json:"product_url,omitempty"`
	PricePerRound string `json:"price_per_round,omitempty"`
	TotalPrice    string `json:"total_price,omitempty"`
	Count         string `json:"count,omitempty"`
	Shipping      string `json:"shipping,omitempty"`
	CaseMaterial  string `json:"case_material,omitempty"`
	Condition     string `json:"condition,omitempty"`
	BulletWeight  string `json:"bullet_weight,omitempty"`
	Strategy      string `json:"strategy,omitempty"`
}

// Listing is one retailer's normalized offer.
type Listing struct {
	Retailer       string   `json:"retailer"`
	Manufacturer   *string  `json:"manufacturer,omitempty"`
	Title          string   `json:"title"`
	ProductURL     *string  `json:"product_url,omitempty"`
	PricePerRound  *float64 `json:"price_per_round,omitempty"`
	ShippingRating *int     `json:"shipping_rating,omitempty"`
	CaseMaterial   *string  `json:"case_material,omitempty"`
	Condition      *string  `json:"condition,omitempty"`
	BulletWeight   *int     `json:"bullet_weight,omitempty"`
}

// Shipping returns the shipping rating, counting a missing rating as 0.
func (l Listing) Shipping() int {
	if l.ShippingRating == nil {
		return 0
	}
	return *l.ShippingRating
}

// HasFreeShipping reports whether the listing carries the free shipping sentinel.
func (l Listing) HasFreeShipping() bool {
	return l.ShippingRating != nil && *l.ShippingRating == FreeShipping
}

// BundleLineItem is one item's resolved purchase.
type BundleLineItem struct {
	Caliber        string  `json:"caliber"`
	BulletWeight   *int    `json:"bullet_weight,omitempty"`
	Manufacturer   *string `json:"manufacturer,omitempty"`
	Retailer       string  `json:"retailer"`
	ProductURL     *string `json:"product_url,omitempty"`
	UnitPrice      float64 `json:"unit_price"`
	Quantity       int     `json:"quantity"`
	TotalPrice     float64 `json:"total_price"`
	ShippingRating *int    `json:"shipping_rating,omitempty"`
}

// BundleStrategy names how a plan was assembled.
type BundleStrategy string

const (
	SingleRetailer BundleStrategy = "single_retailer"
	Hybrid         BundleStrategy = "hybrid"
)

// OptimizationResult is the cheapest feasible plan.
type OptimizationResult struct {
	TotalCost float64          `json:"total_cost"`
	Retailer  string           `json:"retailer"`
	Strategy  BundleStrategy   `json:"strategy"`
	Items     []BundleLineItem `json:"items"`
}

// ValidationError reports a request that breaks an ItemRequest or
// BundleRequest invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the item invariants.
func (r ItemRequest) Validate() error {
	if strings.TrimSpace(r.Caliber) == "" {
		return &ValidationError{Field: "caliber", Reason: "required"}
	}
	if r.MinQty < 1 {
		return &ValidationError{Field: "min_qty", Reason: "must be at least 1"}
	}
	if r.MaxQty < r.MinQty {
		return &ValidationError{Field: "max_qty", Reason: fmt.Sprintf("%d is below min_qty %d", r.MaxQty, r.MinQty)}
	}
	if r.BulletWeight != nil && *r.BulletWeight <= 0 {
		return &ValidationError{Field: "bullet_weight", Reason: "must be positive"}
	}
	return nil
}

// Validate checks every item and the shipping threshold.
func (r BundleRequest) Validate() error {
	if len(r.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "at least one item is required"}
	}
	if r.MinShippingRating < 0 || r.MinShippingRating > MaxShippingRating {
		return &ValidationError{Field: "min_shipping_rating", Reason: fmt.Sprintf("must be between 0 and %d", MaxShippingRating)}
	}
	for i, item := range r.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d (%s): %w", i, item.Caliber, err)
		}
	}
	return nil
}
