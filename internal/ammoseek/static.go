package ammoseek

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lukman83/ammo-bundler/internal/httputil"
	"github.com/lukman83/ammo-bundler/internal/platform"
)

// StaticPageStrategy fetches the results page and parses the server-rendered
// table.
type StaticPageStrategy struct {
	client  *http.Client
	baseURL string
	retries int
}

func NewStaticPageStrategy(client *http.Client, baseURL string, retries int) *StaticPageStrategy {
	return &StaticPageStrategy{client: client, baseURL: baseURL, retries: retries}
}

func (s *StaticPageStrategy) Name() string { return "static" }

func (s *StaticPageStrategy) Execute(ctx context.Context, q platform.Query) (*platform.Result, error) {
	slug, err := Slug(q.Caliber, false)
	if err != nil {
		return nil, err
	}
	pageURL := BuildSearchURL(s.baseURL, slug, q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	httputil.Apply(req, httputil.BrowserHeaders())

	resp, err := httputil.DoWithRetry(s.client, req, s.retries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results page status %d", resp.StatusCode)
	}

	base, _ := url.Parse(s.baseURL)
	rows, err := ParseTable(string(body), base, s.Name())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		// the table is usually filled client-side
		return nil, fmt.Errorf("no rows in server-rendered table")
	}
	return &platform.Result{Rows: rows, Strategy: s.Name()}, nil
}
