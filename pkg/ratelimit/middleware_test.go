package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodGet, "/ping", RateLimitTypeHealth},
		{http.MethodPost, "/api/v1/admin/locations", RateLimitTypeAdmin},
		{http.MethodPost, "/api/v1/admin/reservations/sweep", RateLimitTypeAdmin},
		{http.MethodPost, "/api/v1/auth/login", RateLimitTypeAuth},
		{http.MethodPost, "/api/v1/reservations", RateLimitTypeReservationCritical},
		{http.MethodPost, "/api/v1/reservations/:id/cancel", RateLimitTypeReservationCritical},
		{http.MethodGet, "/api/v1/reservations", RateLimitTypeReservation},
		{http.MethodGet, "/api/v1/reservations/:id", RateLimitTypeReservation},
		{http.MethodGet, "/api/v1/locations/:id/availability", RateLimitTypePublic},
		{http.MethodGet, "/api/v1/vehicles", RateLimitTypeUser},
		{http.MethodGet, "/status", RateLimitTypeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, getRateLimitType(tt.method, tt.path))
		})
	}
}

func TestIsAllowed_BypassesRedis(t *testing.T) {
	cfg := &Config{
		Enabled:                     true,
		WindowDuration:              time.Minute,
		DefaultRequests:             60,
		ReservationCriticalRequests: 20,
		WhitelistedIPs:              []string{"10.0.0.1"},
	}

	t.Run("no client", func(t *testing.T) {
		result, err := NewRateLimiter(nil, cfg).IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeReservationCritical)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 20, result.Limit)
	})

	t.Run("disabled", func(t *testing.T) {
		disabled := *cfg
		disabled.Enabled = false
		result, err := NewRateLimiter(nil, &disabled).IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeDefault)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 60, result.Remaining)
	})

	t.Run("whitelisted", func(t *testing.T) {
		assert.True(t, NewRateLimiter(nil, cfg).isWhitelisted("10.0.0.1"))
		assert.False(t, NewRateLimiter(nil, cfg).isWhitelisted("10.0.0.2"))
	})
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
		{"garbage header falls back", map[string]string{"X-Forwarded-For": "nope"}, "192.0.2.1"},
		{"remote addr", nil, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(c))
		})
	}
}
