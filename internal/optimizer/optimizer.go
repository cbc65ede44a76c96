// Package optimizer runs a bundle request end to end: fetch, normalize and
// filter every item, then pick the cheapest bundle.
package optimizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/lukman83/ammo-bundler/internal/bundle"
	"github.com/lukman83/ammo-bundler/internal/filter"
	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/lukman83/ammo-bundler/internal/normalize"
	"github.com/lukman83/ammo-bundler/internal/platform"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultMaxConcurrent = 4

type bundleFunc func(items []models.ItemRequest, listings [][]models.Listing, minShipping int) (*models.OptimizationResult, error)

// Orchestrator sequences the listing source, normalizer, filter engine and
// bundle optimizer for one request at a time. It holds no per-request state
// and is safe for concurrent use.
type Orchestrator struct {
	source        platform.Source
	logger        *zap.Logger
	maxConcurrent int
	bundle        bundleFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMaxConcurrent bounds how many item fetches run at once.
func WithMaxConcurrent(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

func New(source platform.Source, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:        source,
		logger:        zap.NewNop(),
		maxConcurrent: defaultMaxConcurrent,
		bundle:        bundle.Optimize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize validates req, gathers filtered listings for every item and returns
// the cheapest feasible bundle. The first item without listings fails the
// whole request and the bundle search never runs.
func (o *Orchestrator) Optimize(ctx context.Context, req models.BundleRequest) (*models.OptimizationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := o.resolveCalibers(req.Items); err != nil {
		return nil, err
	}

	listings, err := o.Collect(ctx, req)
	if err != nil {
		return nil, err
	}

	res, err := o.bundle(req.Items, listings, req.MinShippingRating)
	if err != nil {
		o.logger.Warn("bundle search failed", zap.Int("items", len(req.Items)), zap.Error(err))
		return nil, err
	}
	o.logger.Info("bundle selected",
		zap.String("retailer", res.Retailer),
		zap.String("strategy", string(res.Strategy)),
		zap.Float64("total_cost", res.TotalCost),
	)
	return res, nil
}

// Explain runs the same pipeline as Optimize but returns every feasible plan
// in evaluation order instead of only the winner.
func (o *Orchestrator) Explain(ctx context.Context, req models.BundleRequest) ([]bundle.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := o.resolveCalibers(req.Items); err != nil {
		return nil, err
	}
	listings, err := o.Collect(ctx, req)
	if err != nil {
		return nil, err
	}
	return bundle.Evaluate(req.Items, listings, req.MinShippingRating)
}

// Collect fetches, normalizes and filters every item concurrently. The
// returned slice is in request order and every entry is non-empty. An item
// whose fetch runs past the deadline fails as NoListingsForItemError.
func (o *Orchestrator) Collect(ctx context.Context, req models.BundleRequest) ([][]models.Listing, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrent)

	results := make([][]models.Listing, len(req.Items))
	for i, item := range req.Items {
		g.Go(func() error {
			listings, err := o.Listings(gctx, item, req.MinShippingRating)
			if len(listings) == 0 {
				return &NoListingsForItemError{Index: i, Caliber: item.Caliber, Cause: err}
			}
			results[i] = listings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// a cancelled caller is not an empty listing set; an expired
		// deadline is, and the item error carries it as its cause
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return results, nil
}

// Listings returns the filtered listings for a single item. A source error is
// logged and returned alongside an empty result.
func (o *Orchestrator) Listings(ctx context.Context, item models.ItemRequest, minShipping int) ([]models.Listing, error) {
	log := o.logger.With(zap.String("caliber", item.Caliber))

	rows, err := o.source.Listings(ctx, platform.QueryFor(item, minShipping))
	if err != nil {
		log.Warn("listing source failed", zap.Error(err))
		return nil, fmt.Errorf("fetch %s: %w", item.Caliber, err)
	}

	normalized, dropped := normalize.Batch(rows)
	filtered := filter.Apply(item, normalized, minShipping)
	log.Debug("listings ready",
		zap.Int("raw", len(rows)),
		zap.Int("dropped", dropped),
		zap.Int("normalized", len(normalized)),
		zap.Int("matched", len(filtered)),
	)
	return filtered, nil
}

func (o *Orchestrator) resolveCalibers(items []models.ItemRequest) error {
	resolver, ok := o.source.(platform.CaliberResolver)
	if !ok {
		return nil
	}
	for _, item := range items {
		if _, err := resolver.ResolveCaliber(item.Caliber); err != nil {
			return err
		}
	}
	return nil
}
