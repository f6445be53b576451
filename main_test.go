package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"katalog/internal/metrics"
	"katalog/internal/repositories"
	"katalog/internal/services"
)

func newTestDeps(ping func(context.Context) error) AppDeps {
	products := services.NewProductService(repositories.NewMemoryProductRepository(), zap.NewNop())
	m := metrics.NewMetrics()
	return AppDeps{
		Products:       products,
		Reconciler:     services.NewReconciler(products, nil, zap.NewNop()).WithObserver(m),
		Metrics:        m,
		Logger:         zap.NewNop(),
		Ping:           ping,
		UploadMaxBytes: 1 << 20,
	}
}

func TestHealthCheck(t *testing.T) {
	app := NewApp(newTestDeps(nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestHealthCheck_StoreDown(t *testing.T) {
	app := NewApp(newTestDeps(func(context.Context) error { return errors.New("connection refused") }))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "connection refused", body["database"])
}

func TestRoutesRegistered(t *testing.T) {
	app := NewApp(newTestDeps(nil))

	for _, path := range []string{"/api/v1/products", "/api/v1/exports/products", "/metrics"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
