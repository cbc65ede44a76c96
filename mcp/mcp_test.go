package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/lukman83/ammo-bundler/internal/optimizer"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	res      *models.OptimizationResult
	err      error
	listings []models.Listing
	gotReq   models.BundleRequest
	gotItem  models.ItemRequest
	gotShip  int
}

func (f *fakeService) Optimize(_ context.Context, req models.BundleRequest) (*models.OptimizationResult, error) {
	f.gotReq = req
	return f.res, f.err
}

func (f *fakeService) Listings(_ context.Context, item models.ItemRequest, minShipping int) ([]models.Listing, error) {
	f.gotItem, f.gotShip = item, minShipping
	return f.listings, nil
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	return text.Text
}

func TestOptimizeBundleTool(t *testing.T) {
	svc := &fakeService{res: &models.OptimizationResult{TotalCost: 250, Retailer: "A", Strategy: models.SingleRetailer}}
	tl := &tools{svc: svc, logger: zap.NewNop()}

	res, err := tl.handleOptimizeBundle(context.Background(), callTool(map[string]any{
		"items": []any{
			map[string]any{"caliber": "9mm", "min_qty": 500, "max_qty": 1000, "search_terms": []any{"jhp"}},
		},
		"min_shipping_rating": 6,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var got models.OptimizationResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, 250.0, got.TotalCost)

	require.Len(t, svc.gotReq.Items, 1)
	assert.Equal(t, 500, svc.gotReq.Items[0].MinQty)
	assert.Equal(t, []string{"jhp"}, svc.gotReq.Items[0].SearchTerms)
	assert.Equal(t, 6, svc.gotReq.MinShippingRating)
}

func TestOptimizeBundleToolNoListings(t *testing.T) {
	svc := &fakeService{err: &optimizer.NoListingsForItemError{Index: 1, Caliber: "5.56"}}
	tl := &tools{svc: svc, logger: zap.NewNop()}

	res, err := tl.handleOptimizeBundle(context.Background(), callTool(map[string]any{"items": []any{}}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "item 1 (5.56)")
}

func TestSearchListingsTool(t *testing.T) {
	svc := &fakeService{listings: []models.Listing{{Retailer: "A", Title: "Blazer"}}}
	tl := &tools{svc: svc, logger: zap.NewNop()}

	res, err := tl.handleSearchListings(context.Background(), callTool(map[string]any{
		"caliber":             "9mm",
		"min_qty":             50,
		"bullet_weight":       124,
		"case_material":       "brass",
		"min_shipping_rating": 4,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Blazer")

	assert.Equal(t, 50, svc.gotItem.MaxQty)
	require.NotNil(t, svc.gotItem.BulletWeight)
	assert.Equal(t, 124, *svc.gotItem.BulletWeight)
	assert.Equal(t, "brass", *svc.gotItem.CaseMaterial)
	assert.Nil(t, svc.gotItem.Condition)
	assert.Equal(t, 4, svc.gotShip)

	res, err = tl.handleSearchListings(context.Background(), callTool(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListCalibersTool(t *testing.T) {
	tl := &tools{svc: &fakeService{}, logger: zap.NewNop()}
	res, err := tl.handleListCalibers(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "9mm-luger")
}

func TestHandlerRoutes(t *testing.T) {
	svc := &fakeService{res: &models.OptimizationResult{TotalCost: 1, Retailer: "A"}}
	h := Handler(svc, HTTPOptions{APIKey: "secret"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	body := `{"items":[{"caliber":"9mm","min_qty":1,"max_qty":1}]}`

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/optimize", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/optimize", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/optimize", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "9mm", svc.gotReq.Items[0].Caliber)
}
