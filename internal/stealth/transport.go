package stealth

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Transport is an http.RoundTripper running every outgoing request through
// fingerprint -> robots.txt -> rate limiter -> human delay (at least the
// robots.txt Crawl-delay) -> proxy.
// Nil stages are skipped.
type Transport struct {
	Base        http.RoundTripper
	Robots      *RobotsChecker
	Fingerprint *FingerprintPool
	Proxy       *ProxyRotator
	Delay       *HumanDelay
	RateLimiter *rate.Limiter
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())

	userAgent := req.Header.Get("User-Agent")
	if t.Fingerprint != nil {
		fp := t.Fingerprint.Next()
		userAgent = fp.UserAgent
		req.Header.Set("User-Agent", userAgent)
		for key, vals := range fp.Headers {
			if req.Header.Get(key) == "" {
				req.Header[key] = vals
			}
		}
	}

	if t.Robots != nil {
		allowed, err := t.Robots.IsAllowed(req.Context(), userAgent, req.URL.String())
		if err == nil && !allowed {
			return nil, fmt.Errorf("blocked by robots.txt: %s", req.URL.Path)
		}
	}

	if t.RateLimiter != nil {
		if err := t.RateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var pause time.Duration
	if t.Delay != nil {
		pause = t.Delay.Next()
	}
	if t.Robots != nil {
		origin := req.URL.Scheme + "://" + req.URL.Host
		if cd := t.Robots.CrawlDelay(req.Context(), userAgent, origin); cd > pause {
			pause = cd
		}
	}
	if err := sleep(req.Context(), pause); err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}

	base := t.Base
	if t.Proxy != nil {
		base = t.Proxy.Next().Transport()
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
