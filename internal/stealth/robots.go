package stealth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker fetches and caches robots.txt per origin.
type RobotsChecker struct {
	mu       sync.RWMutex
	rules    map[string]cachedRobots
	client   *http.Client
	cacheTTL time.Duration
	enabled  bool
}

type cachedRobots struct {
	data    *robotstxt.RobotsData
	expires time.Time
}

func NewRobotsChecker(client *http.Client, enabled bool) *RobotsChecker {
	return &RobotsChecker{
		rules:    make(map[string]cachedRobots),
		client:   client,
		cacheTTL: time.Hour,
		enabled:  enabled,
	}
}

// IsAllowed reports whether userAgent may fetch rawURL. An unreachable
// robots.txt allows the request.
func (r *RobotsChecker) IsAllowed(ctx context.Context, userAgent, rawURL string) (bool, error) {
	if !r.enabled {
		return true, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, err
	}
	data, err := r.robots(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return true, nil
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, userAgent), nil
}

// CrawlDelay is the Crawl-delay robots.txt sets for userAgent, or 0.
func (r *RobotsChecker) CrawlDelay(ctx context.Context, userAgent, origin string) time.Duration {
	if !r.enabled {
		return 0
	}
	data, err := r.robots(ctx, origin)
	if err != nil {
		return 0
	}
	return data.FindGroup(userAgent).CrawlDelay
}

func (r *RobotsChecker) robots(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	c, ok := r.rules[origin]
	r.mu.RUnlock()
	if ok && time.Now().Before(c.expires) {
		return c.data, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rules[origin]; ok && time.Now().Before(c.expires) {
		return c.data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}
	// 4xx means allow all, 5xx means disallow all
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.rules[origin] = cachedRobots{data: data, expires: time.Now().Add(r.cacheTTL)}
	return data, nil
}
