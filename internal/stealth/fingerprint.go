package stealth

import (
	"net/http"
	"sync"
)

// Fingerprint is a browser identity: a user agent plus the headers that the
// same browser would send with it.
type Fingerprint struct {
	UserAgent string
	Headers   http.Header
}

// FingerprintPool hands out fingerprints round-robin.
type FingerprintPool struct {
	mu           sync.Mutex
	fingerprints []Fingerprint
	next         int
}

func NewFingerprintPool() *FingerprintPool {
	return &FingerprintPool{fingerprints: desktopFingerprints()}
}

// Next returns the next fingerprint in rotation.
func (p *FingerprintPool) Next() Fingerprint {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.fingerprints[p.next%len(p.fingerprints)]
	p.next++
	return f
}

// Size is the number of distinct fingerprints in the pool.
func (p *FingerprintPool) Size() int {
	return len(p.fingerprints)
}

func desktopFingerprints() []Fingerprint {
	const chromeVersion = "133"
	return []Fingerprint{
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
			Headers:   chromiumHints(chromeVersion, "Google Chrome", "Windows"),
		},
		{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
			Headers:   chromiumHints(chromeVersion, "Google Chrome", "macOS"),
		},
		{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
			Headers:   chromiumHints(chromeVersion, "Google Chrome", "Linux"),
		},
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36 Edg/133.0.0.0",
			Headers:   chromiumHints(chromeVersion, "Microsoft Edge", "Windows"),
		},
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:135.0) Gecko/20100101 Firefox/135.0",
			Headers:   http.Header{"Accept-Language": []string{"en-US,en;q=0.5"}},
		},
		{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:135.0) Gecko/20100101 Firefox/135.0",
			Headers:   http.Header{"Accept-Language": []string{"en-US,en;q=0.5"}},
		},
	}
}

// chromiumHints returns the client hint headers matching a Chromium UA.
// Firefox sends none of these.
func chromiumHints(version, brand, platform string) http.Header {
	h := http.Header{}
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Sec-Ch-Ua", `"Chromium";v="`+version+`", "Not(A:Brand";v="99", "`+brand+`";v="`+version+`"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"`+platform+`"`)
	return h
}
