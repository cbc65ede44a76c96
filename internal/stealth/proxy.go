package stealth

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
)

// ProxyProvider is one egress route.
type ProxyProvider interface {
	Transport() http.RoundTripper
	Name() string
}

// ProxyRotator cycles through providers round-robin.
type ProxyRotator struct {
	mu        sync.Mutex
	providers []ProxyProvider
	next      int
}

// NewProxyRotator returns nil when there is nothing to rotate.
func NewProxyRotator(providers []ProxyProvider) *ProxyRotator {
	if len(providers) == 0 {
		return nil
	}
	return &ProxyRotator{providers: providers}
}

func (p *ProxyRotator) Next() ProxyProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	provider := p.providers[p.next%len(p.providers)]
	p.next++
	return provider
}

// HTTPProxyProvider routes through one HTTP(S) or SOCKS5 proxy URL.
type HTTPProxyProvider struct {
	proxyURL  *url.URL
	transport http.RoundTripper
}

// NewHTTPProxyProvider validates raw and builds a transport that opens a new
// connection per request so rotating gateways hand out fresh exits.
func NewHTTPProxyProvider(raw string) (*HTTPProxyProvider, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("proxy %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q: missing host", raw)
	}
	return &HTTPProxyProvider{
		proxyURL: u,
		transport: &http.Transport{
			Proxy:             http.ProxyURL(u),
			DisableKeepAlives: true,
		},
	}, nil
}

func (h *HTTPProxyProvider) Transport() http.RoundTripper { return h.transport }

// Name is the proxy address without credentials.
func (h *HTTPProxyProvider) Name() string {
	return h.proxyURL.Scheme + "://" + h.proxyURL.Host
}

// LoadProxyFile reads one proxy URL per line. Blank lines and lines starting
// with '#' are skipped.
func LoadProxyFile(path string) ([]ProxyProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open proxy file: %w", err)
	}
	defer f.Close()

	var providers []ProxyProvider
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p, err := NewHTTPProxyProvider(raw)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		providers = append(providers, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read proxy file: %w", err)
	}
	return providers, nil
}
