package ammoseek

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lukman83/ammo-bundler/internal/platform"
)

// DefaultBaseURL is the public AmmoSeek site.
const DefaultBaseURL = "https://ammoseek.com"

// jsonSearchPath serves the rows the results table loads over XHR.
const jsonSearchPath = "/ajax/ammo/"

// rowSelector matches result rows once the results table has loaded.
const rowSelector = "div#ammo_wrapper tbody tr"

// SearchParams encodes the query filters AmmoSeek understands. The shipping
// hint buckets the 0-10 rating into the site's low/average/high cost filter.
func SearchParams(q platform.Query) url.Values {
	params := url.Values{}
	if q.CaseMaterial != nil && *q.CaseMaterial != "" {
		params.Set("ca", strings.ToLower(*q.CaseMaterial))
	}
	if q.Condition != nil && *q.Condition != "" {
		params.Set("co", strings.ToLower(*q.Condition))
	}
	if len(q.SearchTerms) > 0 {
		params.Set("ikw", strings.Join(q.SearchTerms, " "))
	}
	if q.MinQty != nil && q.MaxQty != nil {
		params.Set("nr", fmt.Sprintf("%d-%d", *q.MinQty, *q.MaxQty))
	}
	if q.MinShippingRating != nil {
		switch r := *q.MinShippingRating; {
		case r >= 8:
			params.Set("sh", "low")
		case r >= 6:
			params.Set("sh", "average")
		case r >= 4:
			params.Set("sh", "high")
		}
	}
	return params
}

// searchPath is the listing page path for slug, narrowed to a bullet weight
// when one is requested.
func searchPath(slug string, q platform.Query) string {
	path := "/ammo/" + slug
	if q.BulletWeight != nil {
		path += fmt.Sprintf("/-handgun-%dgrains", *q.BulletWeight)
	}
	return path
}

// BuildSearchURL returns the results page URL for slug and q.
func BuildSearchURL(baseURL, slug string, q platform.Query) string {
	u := strings.TrimRight(baseURL, "/") + searchPath(slug, q)
	if query := SearchParams(q).Encode(); query != "" {
		u += "?" + query
	}
	return u
}

// BuildJSONURL returns the XHR endpoint URL that feeds the results table.
func BuildJSONURL(baseURL, slug string, q platform.Query) string {
	path := strings.TrimPrefix(searchPath(slug, q), "/ammo/")
	u := strings.TrimRight(baseURL, "/") + jsonSearchPath + path
	if query := SearchParams(q).Encode(); query != "" {
		u += "?" + query
	}
	return u
}
