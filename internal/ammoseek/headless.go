package ammoseek

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/lukman83/ammo-bundler/internal/platform"
	"github.com/lukman83/ammo-bundler/internal/stealth"
)

// HeadlessBrowserStrategy renders the results page in Chromium so the
// client-side table fills in, then parses the rendered DOM.
type HeadlessBrowserStrategy struct {
	baseURL      string
	browserBin   string
	fingerprints *stealth.FingerprintPool
	delay        *stealth.HumanDelay
	loadTimeout  time.Duration
	rowsTimeout  time.Duration
}

func NewHeadlessBrowserStrategy(baseURL, browserBin string, fingerprints *stealth.FingerprintPool, delay *stealth.HumanDelay) *HeadlessBrowserStrategy {
	return &HeadlessBrowserStrategy{
		baseURL:      baseURL,
		browserBin:   browserBin,
		fingerprints: fingerprints,
		delay:        delay,
		loadTimeout:  60 * time.Second,
		rowsTimeout:  30 * time.Second,
	}
}

func (h *HeadlessBrowserStrategy) Name() string { return "headless" }

func (h *HeadlessBrowserStrategy) Execute(ctx context.Context, q platform.Query) (*platform.Result, error) {
	slug, err := Slug(q.Caliber, false)
	if err != nil {
		return nil, err
	}

	if h.delay != nil {
		if err := h.delay.Wait(ctx); err != nil {
			return nil, err
		}
	}

	page, cleanup, err := h.openPage(ctx, BuildSearchURL(h.baseURL, slug, q))
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := page.Timeout(h.loadTimeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for page load: %w", err)
	}
	if _, err := page.Timeout(h.rowsTimeout).Element(rowSelector); err != nil {
		// no rows rendered: treat as an empty result
		return nil, fmt.Errorf("wait for result rows: %w", err)
	}

	htmlContent, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("get page HTML: %w", err)
	}

	base, _ := url.Parse(h.baseURL)
	rows, err := ParseTable(htmlContent, base, h.Name())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("rendered table has no rows")
	}
	return &platform.Result{Rows: rows, Strategy: h.Name()}, nil
}

func (h *HeadlessBrowserStrategy) openPage(ctx context.Context, pageURL string) (*rod.Page, func(), error) {
	l := launcher.New().Headless(true).Set("no-sandbox").Logger(io.Discard)
	if h.browserBin != "" {
		l = l.Bin(h.browserBin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}
	cleanupBrowser := func() {
		browser.Close()
		l.Cleanup()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		cleanupBrowser()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}

	if h.fingerprints != nil {
		fp := h.fingerprints.Next()
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      fp.UserAgent,
			AcceptLanguage: "en-US,en;q=0.9",
		}); err != nil {
			cleanupBrowser()
			return nil, nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{Width: 1920, Height: 1080}); err != nil {
		cleanupBrowser()
		return nil, nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.Navigate(pageURL); err != nil {
		cleanupBrowser()
		return nil, nil, fmt.Errorf("navigate: %w", err)
	}

	cleanup := func() {
		page.Close()
		cleanupBrowser()
	}
	return page, cleanup, nil
}
