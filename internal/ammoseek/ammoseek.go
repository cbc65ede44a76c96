// Package ammoseek fetches ammunition listings from AmmoSeek search results.
package ammoseek

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/lukman83/ammo-bundler/internal/platform"
	"github.com/lukman83/ammo-bundler/internal/stealth"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultFastTimeout = 10 * time.Second
	defaultRetries     = 2
)

// Options configures a Scraper. Zero values pick the defaults.
type Options struct {
	BaseURL        string
	StrictCalibers bool
	FastTimeout    time.Duration
	Retries        int

	// Headless fallback. Leave NoHeadless unset to render with Chromium when
	// the fast strategies come back empty.
	NoHeadless   bool
	BrowserBin   string
	Fingerprints *stealth.FingerprintPool
	Delay        *stealth.HumanDelay

	Logger *zap.Logger
}

// Scraper implements platform.Source for AmmoSeek.
type Scraper struct {
	fastStrategies []platform.Strategy // static page and JSON endpoint, raced
	slowStrategies []platform.Strategy // headless browser, tried in order
	rateLimiter    *rate.Limiter
	fastTimeout    time.Duration
	strict         bool
	logger         *zap.Logger
}

// NewScraper creates an AmmoSeek scraper with the full strategy chain.
func NewScraper(client *http.Client, rateLimiter *rate.Limiter, opts Options) *Scraper {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.FastTimeout <= 0 {
		opts.FastTimeout = defaultFastTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = defaultRetries
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Scraper{
		fastStrategies: []platform.Strategy{
			NewStaticPageStrategy(client, opts.BaseURL, opts.Retries),
			NewJSONStrategy(client, opts.BaseURL, opts.Retries),
		},
		rateLimiter: rateLimiter,
		fastTimeout: opts.FastTimeout,
		strict:      opts.StrictCalibers,
		logger:      opts.Logger,
	}
	if !opts.NoHeadless {
		s.slowStrategies = []platform.Strategy{
			NewHeadlessBrowserStrategy(opts.BaseURL, opts.BrowserBin, opts.Fingerprints, opts.Delay),
		}
	}
	return s
}

// ResolveCaliber maps caliber to its AmmoSeek slug.
func (s *Scraper) ResolveCaliber(caliber string) (string, error) {
	return Slug(caliber, s.strict)
}

// Listings returns the raw rows for q. When every strategy comes back empty
// the error says so; callers treat that as an empty listing set.
func (s *Scraper) Listings(ctx context.Context, q platform.Query) ([]models.RawRow, error) {
	if _, err := s.ResolveCaliber(q.Caliber); err != nil {
		return nil, err
	}
	return s.executeWithFallback(ctx, q)
}

// executeWithFallback races fast strategies concurrently, then falls back to slow strategies.
func (s *Scraper) executeWithFallback(ctx context.Context, q platform.Query) ([]models.RawRow, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultCh := make(chan *platform.Result, len(s.fastStrategies))
	doneCh := make(chan struct{}, len(s.fastStrategies))

	for _, st := range s.fastStrategies {
		go func() {
			defer func() { doneCh <- struct{}{} }()
			if s.rateLimiter != nil {
				if err := s.rateLimiter.Wait(raceCtx); err != nil {
					return
				}
			}
			r, err := st.Execute(raceCtx, q)
			if err != nil {
				s.logger.Debug("strategy failed", zap.String("strategy", st.Name()),
					zap.String("caliber", q.Caliber), zap.Error(err))
				return
			}
			if r != nil && len(r.Rows) > 0 {
				resultCh <- r
			}
		}()
	}

	timer := time.NewTimer(s.fastTimeout)
	defer timer.Stop()

	pending := len(s.fastStrategies)
race:
	for pending > 0 {
		select {
		case r := <-resultCh:
			cancel()
			platform.ReportFound(ctx, len(r.Rows), q.Caliber, r.Strategy)
			return r.Rows, nil
		case <-doneCh:
			pending--
		case <-timer.C:
			platform.ReportProgress(ctx, "Fast strategies timed out, trying headless browser...")
			break race
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	cancel()

	// a result may have landed together with the last done signal
	select {
	case r := <-resultCh:
		platform.ReportFound(ctx, len(r.Rows), q.Caliber, r.Strategy)
		return r.Rows, nil
	default:
	}

	for _, st := range s.slowStrategies {
		if s.rateLimiter != nil {
			if err := s.rateLimiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		platform.ReportProgress(ctx, fmt.Sprintf("Trying %s strategy...", st.Name()))
		r, err := st.Execute(ctx, q)
		if err == nil && r != nil && len(r.Rows) > 0 {
			platform.ReportFound(ctx, len(r.Rows), q.Caliber, st.Name())
			return r.Rows, nil
		}
		if err != nil {
			s.logger.Debug("strategy failed", zap.String("strategy", st.Name()),
				zap.String("caliber", q.Caliber), zap.Error(err))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("all strategies exhausted for caliber %q", q.Caliber)
}
