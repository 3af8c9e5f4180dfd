package app_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetimport/internal/app"
	"assetimport/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "127.0.0.1:0", Environment: "test"},
		API:    config.APIConfig{BaseURL: "http://127.0.0.1:1", LookupPageSize: 100},
		Import: config.ImportConfig{MaxFileSizeMB: 5},
		Store:  config.StoreConfig{Provider: app.StoreMemory, TTL: time.Hour},
		Log:    config.LogConfig{Level: "info"},
	}
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNew_MemoryStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := app.New(context.Background(), testConfig(), testLogger())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	r := a.Handler()
	for _, path := range []string{"/healthz", "/readyz", "/api/v1/imports/categories/template"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestNew_UnknownStore(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Provider = "etcd"

	_, err := app.New(context.Background(), cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "etcd")
}

func TestServe_StopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := app.New(context.Background(), testConfig(), testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
