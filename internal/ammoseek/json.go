package ammoseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lukman83/ammo-bundler/internal/httputil"
	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/lukman83/ammo-bundler/internal/platform"
)

// JSONStrategy calls the XHR endpoint the results table loads its rows from.
type JSONStrategy struct {
	client  *http.Client
	baseURL string
	retries int
}

func NewJSONStrategy(client *http.Client, baseURL string, retries int) *JSONStrategy {
	return &JSONStrategy{client: client, baseURL: baseURL, retries: retries}
}

func (j *JSONStrategy) Name() string { return "json" }

func (j *JSONStrategy) Execute(ctx context.Context, q platform.Query) (*platform.Result, error) {
	slug, err := Slug(q.Caliber, false)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BuildJSONURL(j.baseURL, slug, q), nil)
	if err != nil {
		return nil, err
	}
	origin := strings.TrimRight(j.baseURL, "/")
	httputil.Apply(req, httputil.AjaxHeaders(origin, BuildSearchURL(j.baseURL, slug, q)))

	resp, err := httputil.DoWithRetry(j.client, req, j.retries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint status %d", resp.StatusCode)
	}

	base, _ := url.Parse(j.baseURL)
	rows, err := parseSearchResponse(body, base)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows in search response")
	}
	return &platform.Result{Rows: rows, Strategy: j.Name()}, nil
}

// searchResponse is the DataTables payload. Numeric fields arrive as numbers
// or strings depending on the row, so they are kept raw.
type searchResponse struct {
	RecordsTotal int       `json:"recordsTotal"`
	Data         []jsonRow `json:"data"`
}

type jsonRow struct {
	Retailer     string          `json:"retailer"`
	Mfg          string          `json:"mfg"`
	Descr        string          `json:"descr"`
	URL          string          `json:"url"`
	CPR          json.RawMessage `json:"cpr"`
	Price        json.RawMessage `json:"price"`
	Count        json.RawMessage `json:"count"`
	Shipping     json.RawMessage `json:"shipping_rating"`
	FreeShipping bool            `json:"free_shipping"`
	Casing       string          `json:"casing"`
	Condition    string          `json:"condition"`
	Grains       json.RawMessage `json:"grains"`
}

func parseSearchResponse(data []byte, base *url.URL) ([]models.RawRow, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}

	rows := make([]models.RawRow, 0, len(resp.Data))
	for _, jr := range resp.Data {
		row := models.RawRow{
			Retailer:      jr.Retailer,
			Manufacturer:  jr.Mfg,
			Title:         jr.Descr,
			ProductURL:    resolve(base, jr.URL),
			PricePerRound: cprText(jr.CPR),
			TotalPrice:    rawText(jr.Price),
			Count:         rawText(jr.Count),
			Shipping:      rawText(jr.Shipping),
			CaseMaterial:  jr.Casing,
			Condition:     jr.Condition,
			BulletWeight:  rawText(jr.Grains),
			Strategy:      "json",
		}
		if jr.FreeShipping {
			row.Shipping = "free"
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// maxBareCPR bounds a unitless numeric cpr read as dollars. Anything above
// it is taken to be cents of unknown scale and left to total/count.
const maxBareCPR = 10.0

func cprText(raw json.RawMessage) string {
	s := rawText(raw)
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return s
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v > maxBareCPR {
		return ""
	}
	return s
}

// rawText renders a JSON scalar as text: strings unquoted, numbers verbatim,
// null as empty.
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}
