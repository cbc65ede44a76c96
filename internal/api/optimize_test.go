package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lukman83/ammo-bundler/internal/bundle"
	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/lukman83/ammo-bundler/internal/optimizer"
	"github.com/lukman83/ammo-bundler/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOptimizer struct {
	res *models.OptimizationResult
	err error
	got models.BundleRequest
}

func (f *fakeOptimizer) Optimize(ctx context.Context, req models.BundleRequest) (*models.OptimizationResult, error) {
	f.got = req
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return f.res, f.err
}

const validBody = `{"items":[{"caliber":"9mm","min_qty":500,"max_qty":1000}],"min_shipping_rating":5}`

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/optimize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestOptimizeHandlerOK(t *testing.T) {
	f := &fakeOptimizer{res: &models.OptimizationResult{
		TotalCost: 125,
		Retailer:  "A",
		Strategy:  models.SingleRetailer,
		Items: []models.BundleLineItem{
			{Caliber: "9mm", Retailer: "A", UnitPrice: 0.25, Quantity: 500, TotalPrice: 125},
		},
	}}
	rr := post(t, OptimizeHandler(f, time.Second, nil), validBody)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got models.OptimizationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, *f.res, got)
	assert.Equal(t, 5, f.got.MinShippingRating)
	assert.Equal(t, 1000, f.got.Items[0].MaxQty)
}

func TestOptimizeHandlerErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		code    string
		caliber string
	}{
		{name: "malformed json", body: `{"items":`, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "unknown field", body: `{"items":[],"shipping":3}`, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "invalid request", body: `{"items":[{"caliber":"9mm","min_qty":0,"max_qty":1}]}`, status: http.StatusBadRequest, code: "invalid_request"},
		{
			name:    "no listings",
			body:    validBody,
			err:     &optimizer.NoListingsForItemError{Index: 0, Caliber: "9mm"},
			status:  http.StatusNotFound,
			code:    "no_listings_for_item",
			caliber: "9mm",
		},
		{
			name:    "item deadline",
			body:    validBody,
			err:     &optimizer.NoListingsForItemError{Index: 1, Caliber: "5.56", Cause: context.DeadlineExceeded},
			status:  http.StatusNotFound,
			code:    "no_listings_for_item",
			caliber: "5.56",
		},
		{name: "no bundle", body: validBody, err: bundle.ErrNoFeasibleBundle, status: http.StatusNotFound, code: "no_feasible_bundle"},
		{
			name:   "unknown caliber",
			body:   validBody,
			err:    fmt.Errorf("%w: %q", platform.ErrUnknownCaliber, "9mm"),
			status: http.StatusUnprocessableEntity,
			code:   "unknown_caliber",
		},
		{name: "timeout", body: validBody, err: context.DeadlineExceeded, status: http.StatusGatewayTimeout, code: "timeout"},
		{name: "other", body: validBody, err: errors.New("boom"), status: http.StatusInternalServerError, code: "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, OptimizeHandler(&fakeOptimizer{err: tt.err}, time.Second, nil), tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())

			var got errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.caliber, got.Caliber)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestOptimizeHandlerValidationField(t *testing.T) {
	rr := post(t, OptimizeHandler(&fakeOptimizer{}, 0, nil), `{"items":[{"caliber":"9mm","min_qty":5,"max_qty":1}]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var got errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "max_qty", got.Field)
}

func TestOptimizeHandlerMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/optimize", nil)
	rr := httptest.NewRecorder()
	OptimizeHandler(&fakeOptimizer{}, 0, nil).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}
