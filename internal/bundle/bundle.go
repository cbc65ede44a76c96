// Package bundle finds the cheapest way to buy every requested item from the
// filtered listings.
package bundle

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lukman83/ammo-bundler/internal/filter"
	"github.com/lukman83/ammo-bundler/internal/models"
)

// ErrNoFeasibleBundle is returned when no retailer can cover every item under
// either strategy.
var ErrNoFeasibleBundle = errors.New("no feasible bundle")

// Plan is one feasible (retailer, strategy) combination.
type Plan struct {
	Retailer string
	Strategy models.BundleStrategy
	Cost     float64
	Picks    []models.Listing // one per item, request order
}

// index maps each retailer to its eligible listings per item, plus the
// per-item free shipping pool. Built once per optimization.
type index struct {
	retailers  []string
	byRetailer map[string][][]models.Listing
	free       [][]models.Listing
}

func buildIndex(listings [][]models.Listing, minShipping int) *index {
	idx := &index{
		byRetailer: make(map[string][][]models.Listing),
		free:       make([][]models.Listing, len(listings)),
	}
	for i, ls := range listings {
		for _, l := range ls {
			if l.PricePerRound == nil {
				continue
			}
			perItem, ok := idx.byRetailer[l.Retailer]
			if !ok {
				perItem = make([][]models.Listing, len(listings))
				idx.byRetailer[l.Retailer] = perItem
				idx.retailers = append(idx.retailers, l.Retailer)
			}
			if filter.MeetsShippingThreshold(l, minShipping) {
				perItem[i] = append(perItem[i], l)
			}
			if l.HasFreeShipping() {
				idx.free[i] = append(idx.free[i], l)
			}
		}
	}
	sort.Strings(idx.retailers)
	return idx
}

// Evaluate returns every feasible plan in evaluation order: retailers by
// ascending name, single-retailer before hybrid for each.
func Evaluate(items []models.ItemRequest, listings [][]models.Listing, minShipping int) ([]Plan, error) {
	if len(items) != len(listings) {
		return nil, fmt.Errorf("bundle: %d items but %d listing sets", len(items), len(listings))
	}
	idx := buildIndex(listings, minShipping)

	var plans []Plan
	for _, r := range idx.retailers {
		if p, ok := singleRetailer(items, idx, r); ok {
			plans = append(plans, p)
		}
		if p, ok := hybrid(items, idx, r); ok {
			plans = append(plans, p)
		}
	}
	return plans, nil
}

// Optimize returns the cheapest feasible plan. Equal costs keep the plan
// evaluated first.
func Optimize(items []models.ItemRequest, listings [][]models.Listing, minShipping int) (*models.OptimizationResult, error) {
	plans, err := Evaluate(items, listings, minShipping)
	if err != nil {
		return nil, err
	}
	best, ok := Best(plans)
	if !ok {
		return nil, ErrNoFeasibleBundle
	}
	return Result(items, best), nil
}

// Best picks the cheapest plan. A later plan replaces the current best only
// when strictly cheaper.
func Best(plans []Plan) (Plan, bool) {
	if len(plans) == 0 {
		return Plan{}, false
	}
	best := plans[0]
	for _, p := range plans[1:] {
		if p.Cost < best.Cost {
			best = p
		}
	}
	return best, true
}

// Result renders a plan as line items with rounded totals.
func Result(items []models.ItemRequest, p Plan) *models.OptimizationResult {
	res := &models.OptimizationResult{
		Retailer: p.Retailer,
		Strategy: p.Strategy,
		Items:    make([]models.BundleLineItem, 0, len(items)),
	}
	total := 0.0
	for i, item := range items {
		l := p.Picks[i]
		unit := *l.PricePerRound
		line := models.BundleLineItem{
			Caliber:        item.Caliber,
			BulletWeight:   l.BulletWeight,
			Manufacturer:   l.Manufacturer,
			Retailer:       l.Retailer,
			ProductURL:     l.ProductURL,
			UnitPrice:      unit,
			Quantity:       item.MinQty,
			TotalPrice:     Round2(unit * float64(item.MinQty)),
			ShippingRating: l.ShippingRating,
		}
		if line.BulletWeight == nil {
			line.BulletWeight = item.BulletWeight
		}
		total += line.TotalPrice
		res.Items = append(res.Items, line)
	}
	res.TotalCost = Round2(total)
	return res
}

func singleRetailer(items []models.ItemRequest, idx *index, r string) (Plan, bool) {
	p := Plan{Retailer: r, Strategy: models.SingleRetailer, Picks: make([]models.Listing, len(items))}
	for i, item := range items {
		l, ok := cheapest(idx.byRetailer[r][i])
		if !ok {
			return Plan{}, false
		}
		p.Picks[i] = l
		p.Cost += *l.PricePerRound * float64(item.MinQty)
	}
	return p, true
}

// hybrid buys from r where r can ship acceptably and falls back to the
// cheapest free shipping listing from any retailer otherwise.
func hybrid(items []models.ItemRequest, idx *index, r string) (Plan, bool) {
	p := Plan{Retailer: r, Strategy: models.Hybrid, Picks: make([]models.Listing, len(items))}
	for i, item := range items {
		l, ok := cheapest(idx.byRetailer[r][i])
		if !ok {
			l, ok = cheapest(idx.free[i])
		}
		if !ok {
			return Plan{}, false
		}
		p.Picks[i] = l
		p.Cost += *l.PricePerRound * float64(item.MinQty)
	}
	return p, true
}

// cheapest returns the lowest priced listing; the first seen wins ties.
func cheapest(ls []models.Listing) (models.Listing, bool) {
	var best models.Listing
	found := false
	for _, l := range ls {
		if l.PricePerRound == nil {
			continue
		}
		if !found || *l.PricePerRound < *best.PricePerRound {
			best = l
			found = true
		}
	}
	return best, found
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
