package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/invoice-service/internal/auth"
	"github.com/ridwanfathin/invoice-service/internal/config"
	"github.com/ridwanfathin/invoice-service/internal/handler"
	"github.com/ridwanfathin/invoice-service/internal/render"
	"github.com/ridwanfathin/invoice-service/internal/repository"
	"github.com/ridwanfathin/invoice-service/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                 0,
		ShutdownTimeout:      time.Second,
		CORSAllowedOrigins:   []string{"*"},
		LogLevel:             "info",
		StorageDriver:        config.StorageMemory,
		AIRateLimitPerMinute: 60,
		AIRateBurst:          1,
	}
}

func newTestServer(health func(context.Context) error) (*Server, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour, nil)
	invoices := service.NewInvoiceService(repository.NewMemoryInvoiceRepository(), nil, service.Options{})
	mapper := handler.ErrorMapper{Log: zerolog.Nop()}

	return NewServer(testConfig(), Dependencies{
		InvoiceHandler: handler.NewInvoiceHandler(invoices, render.NewPDFRenderer(), mapper),
		AIHandler:      handler.NewAIHandler(invoices, service.NewAssistantService(invoices, nil, nil), mapper),
		Tokens:         tokens,
		HealthCheck:    health,
	}), tokens
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(nil)
	w := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":"memory"`)

	srv, _ = newTestServer(func(context.Context) error { return errors.New("down") })
	w = httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRoutesRequireToken(t *testing.T) {
	srv, tokens := newTestServer(nil)

	w := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/invoices", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := tokens.IssueAccessToken("user-1", "u@example.com")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"limit":0,"offset":0}`, w.Body.String())
}

func TestAIRoutesAreRateLimited(t *testing.T) {
	srv, tokens := newTestServer(nil)
	token, _, err := tokens.IssueAccessToken("user-1", "")
	require.NoError(t, err)

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/v1/ai/dashboard-summary", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		srv.GetRouter().ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
