package httputil

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	retryBackoff = time.Millisecond
}

func TestDoWithRetryRecoversFrom5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := DoWithRetry(srv.Client(), req, 2)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoWithRetryGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := DoWithRetry(srv.Client(), req, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestDoWithRetryDoesNotRetry4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := DoWithRetry(srv.Client(), req, 3)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoWithRetryStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	_, err := DoWithRetry(srv.Client(), req, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadBodyDecodes(t *testing.T) {
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	w.Write([]byte("gzipped"))
	w.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write([]byte("brotli"))
	bw.Close()

	tests := []struct {
		encoding string
		body     []byte
		want     string
	}{
		{"gzip", gz.Bytes(), "gzipped"},
		{"br", br.Bytes(), "brotli"},
		{"", []byte("plain"), "plain"},
	}
	for _, tt := range tests {
		resp := &http.Response{
			Header: http.Header{"Content-Encoding": []string{tt.encoding}},
			Body:   io.NopCloser(bytes.NewReader(tt.body)),
		}
		got, err := ReadBody(resp)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}

func TestApply(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("Accept", "old")
	Apply(req, AjaxHeaders("https://ammoseek.com", "https://ammoseek.com/ammo/9mm-luger"))
	assert.Equal(t, "XMLHttpRequest", req.Header.Get("X-Requested-With"))
	assert.NotEqual(t, "old", req.Header.Get("Accept"))
	assert.Equal(t, "https://ammoseek.com/ammo/9mm-luger", req.Header.Get("Referer"))
}
