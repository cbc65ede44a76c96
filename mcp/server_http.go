package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/lukman83/ammo-bundler/internal/api"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// HTTPOptions configures ServeHTTP.
type HTTPOptions struct {
	Addr string
	// APIKey enables Bearer auth on /mcp and /optimize when set.
	APIKey string
	// RequestTimeout bounds one REST optimize call.
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// Handler returns the HTTP mux: MCP on /mcp, REST on /optimize, and /healthz.
func Handler(svc Service, opts HTTPOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpServer := server.NewStreamableHTTPServer(NewServer(svc, logger), server.WithStateLess(true))

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	var mcpHandler http.Handler = httpServer
	var restHandler = api.OptimizeHandler(svc, opts.RequestTimeout, logger)
	if opts.APIKey != "" {
		mcpHandler = bearerAuth(opts.APIKey, mcpHandler)
		restHandler = bearerAuth(opts.APIKey, restHandler)
	}
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/optimize", restHandler)

	return mux
}

// ServeHTTP starts the MCP and REST server over HTTP with optional Bearer token auth.
func ServeHTTP(svc Service, opts HTTPOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	writeTimeout := 60 * time.Second
	if opts.RequestTimeout+10*time.Second > writeTimeout {
		writeTimeout = opts.RequestTimeout + 10*time.Second
	}
	srv := &http.Server{
		Addr:         opts.Addr,
		Handler:      Handler(svc, opts),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("HTTP server listening", zap.String("addr", opts.Addr), zap.Bool("auth", opts.APIKey != ""))
	return srv.ListenAndServe()
}

func bearerAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="ammo-bundler"`)
			http.Error(w, `{"error":"missing Authorization header"}`, http.StatusUnauthorized)
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="ammo-bundler", error="invalid_token"`)
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
