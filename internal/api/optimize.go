// Package api exposes the bundle optimizer as a small JSON REST surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lukman83/ammo-bundler/internal/bundle"
	"github.com/lukman83/ammo-bundler/internal/models"
	"github.com/lukman83/ammo-bundler/internal/optimizer"
	"github.com/lukman83/ammo-bundler/internal/platform"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Optimizer is the part of the orchestrator the handler needs.
type Optimizer interface {
	Optimize(ctx context.Context, req models.BundleRequest) (*models.OptimizationResult, error)
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Caliber string `json:"caliber,omitempty"`
	Field   string `json:"field,omitempty"`
}

// OptimizeHandler serves POST /optimize. Requests that run longer than
// timeout are abandoned with 504.
func OptimizeHandler(opt Optimizer, timeout time.Duration, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, errorResponse{Error: "use POST", Code: "method_not_allowed"})
			return
		}

		var req models.BundleRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error(), Code: "invalid_request"})
			return
		}

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		res, err := opt.Optimize(ctx, req)
		if err != nil {
			status, body := classify(err)
			if status >= http.StatusInternalServerError {
				logger.Error("optimize failed", zap.Error(err))
			} else {
				logger.Info("optimize rejected", zap.Int("status", status), zap.Error(err))
			}
			writeError(w, status, body)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}

// classify maps optimizer errors onto HTTP statuses.
func classify(err error) (int, errorResponse) {
	var (
		validation *models.ValidationError
		noListings *optimizer.NoListingsForItemError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_request", Field: validation.Field}
	case errors.Is(err, platform.ErrUnknownCaliber):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "unknown_caliber"}
	case errors.As(err, &noListings):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "no_listings_for_item", Caliber: noListings.Caliber}
	case errors.Is(err, bundle.ErrNoFeasibleBundle):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "no_feasible_bundle"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse{Error: "upstream timeout", Code: "timeout"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"}
	}
}

func writeError(w http.ResponseWriter, code int, body errorResponse) {
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
