package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lukman83/ammo-bundler/internal/bundle"
	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }

func TestParseItemFlag(t *testing.T) {
	item, err := parseItemFlag("9mm:500:1000")
	require.NoError(t, err)
	assert.Equal(t, models.ItemRequest{Caliber: "9mm", MinQty: 500, MaxQty: 1000}, item)

	item, err = parseItemFlag(" 5.56 : 200")
	require.NoError(t, err)
	assert.Equal(t, models.ItemRequest{Caliber: "5.56", MinQty: 200, MaxQty: 200}, item)

	for _, bad := range []string{"9mm", ":50", "9mm:x", "9mm:1:y", "9mm:1:2:3"} {
		_, err := parseItemFlag(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadRequest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "req.json")
	body := `{"items":[{"caliber":"9mm","min_qty":500,"max_qty":1000,"search_terms":["jhp"]}],"min_shipping_rating":6}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	req, err := loadRequest(path, nil, []string{"5.56:200"})
	require.NoError(t, err)
	require.Len(t, req.Items, 2)
	assert.Equal(t, []string{"jhp"}, req.Items[0].SearchTerms)
	assert.Equal(t, "5.56", req.Items[1].Caliber)
	assert.Equal(t, 6, req.MinShippingRating)

	req, err = loadRequest("-", strings.NewReader(body), nil)
	require.NoError(t, err)
	assert.Len(t, req.Items, 1)

	_, err = loadRequest("", nil, nil)
	assert.ErrorContains(t, err, "no items")

	_, err = loadRequest("-", strings.NewReader("{"), nil)
	assert.ErrorContains(t, err, "decode request")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$0.00", formatPrice(0))
	assert.Equal(t, "$250.00", formatPrice(250))
	assert.Equal(t, "$1,234.57", formatPrice(1234.567))
	assert.Equal(t, "$1,000,000.00", formatPrice(1e6))
	assert.Equal(t, "-$12.50", formatPrice(-12.5))
}

func TestFormatUnit(t *testing.T) {
	assert.Equal(t, "28.5¢", formatUnit(0.285))
	assert.Equal(t, "25¢", formatUnit(0.25))
	assert.Equal(t, "$1.05", formatUnit(1.05))
	assert.Equal(t, "free", formatShipping(iptr(10)))
	assert.Equal(t, "7/10", formatShipping(iptr(7)))
	assert.Equal(t, "-", formatShipping(nil))
}

func TestSummarizeRetailers(t *testing.T) {
	listings := []models.Listing{
		{Retailer: "B", PricePerRound: f64(0.30)},
		{Retailer: "A", PricePerRound: f64(0.28), ShippingRating: iptr(10)},
		{Retailer: "B", PricePerRound: f64(0.22)},
		{Retailer: "C", PricePerRound: f64(0.28)},
		{Retailer: "D"},
	}
	got := summarizeRetailers(listings)
	require.Len(t, got, 3)
	assert.Equal(t, retailerSummary{retailer: "B", count: 2, cheapest: 0.22}, got[0])
	assert.Equal(t, retailerSummary{retailer: "A", count: 1, cheapest: 0.28, free: true}, got[1])
	assert.Equal(t, "C", got[2].retailer)
}

func TestSortByPrice(t *testing.T) {
	listings := []models.Listing{
		{Retailer: "none"},
		{Retailer: "hi", PricePerRound: f64(0.5)},
		{Retailer: "lo1", PricePerRound: f64(0.2)},
		{Retailer: "lo2", PricePerRound: f64(0.2)},
	}
	sortByPrice(listings)
	var order []string
	for _, l := range listings {
		order = append(order, l.Retailer)
	}
	assert.Equal(t, []string{"lo1", "lo2", "hi", "none"}, order)
}

func TestPrintResultTable(t *testing.T) {
	var buf bytes.Buffer
	printResultTable(&buf, &models.OptimizationResult{
		TotalCost: 250,
		Retailer:  "A",
		Strategy:  models.SingleRetailer,
		Items: []models.BundleLineItem{
			{Caliber: "9mm", Retailer: "A", Manufacturer: sptr("CCI"), UnitPrice: 0.28, Quantity: 500, TotalPrice: 140, ShippingRating: iptr(8), ProductURL: sptr("https://a.example/9?utm=x")},
			{Caliber: "5.56", Retailer: "A", UnitPrice: 0.55, Quantity: 200, TotalPrice: 110, ShippingRating: iptr(10)},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Cheapest bundle: $250.00  (single_retailer, anchored on A)")
	assert.Contains(t, out, "28¢")
	assert.Contains(t, out, "$140.00")
	assert.Contains(t, out, "free")
	assert.Contains(t, out, "https://a.example/9\n")
}

func TestPrintPlans(t *testing.T) {
	var buf bytes.Buffer
	printPlans(&buf, []bundle.Plan{
		{Retailer: "A", Strategy: models.SingleRetailer, Cost: 250},
		{Retailer: "A", Strategy: models.Hybrid, Cost: 250},
		{Retailer: "B", Strategy: models.Hybrid, Cost: 245.5},
	})
	out := buf.String()
	assert.Contains(t, out, "Feasible plans (3):")
	var marked []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "*") {
			marked = append(marked, line)
		}
	}
	require.Len(t, marked, 1)
	assert.Contains(t, marked[0], "B")
	assert.Contains(t, marked[0], "hybrid")
	assert.Contains(t, marked[0], "$245.50")

	buf.Reset()
	printPlans(&buf, nil)
	assert.Equal(t, "No feasible plans.\n", buf.String())
}
