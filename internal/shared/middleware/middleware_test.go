package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parkly/internal/shared/config"
	"parkly/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	r := gin.New()
	r.Use(JWTAuthWithConfig(cfg))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	r := protectedRouter()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"refresh token", "Bearer " + signToken(t, jwt.MapClaims{"user_id": "u1", "type": "refresh", "exp": exp}), http.StatusUnauthorized},
		{"no subject", "Bearer " + signToken(t, jwt.MapClaims{"type": "access", "exp": exp}), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.MapClaims{"user_id": "u1", "type": "access", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, jwt.MapClaims{"user_id": "u1", "role": "USER", "type": "access", "exp": exp}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	r := protectedRouter()
	exp := time.Now().Add(time.Hour).Unix()

	for role, code := range map[string]int{"USER": http.StatusForbidden, "ADMIN": http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"user_id": "u1", "role": role, "type": "access", "exp": exp}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, code, w.Code, role)
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(logger.Discard()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(requestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "trace-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-42", w.Header().Get(requestIDHeader))
}
