package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cfg := newTestDeps(t, 15*time.Minute)
	engine := gin.New()
	NewRouter(NewController(NewService(NewRepository(db), cfg)), cfg).SetupRoutes(engine.Group("/api/v1"))
	return engine
}

func send(engine *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouter_AccountFlow(t *testing.T) {
	engine := newTestEngine(t)

	w := send(engine, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered struct {
		Data AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	token := registered.Data.AccessToken
	require.NotEmpty(t, token)

	w = send(engine, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(engine, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "asha@example.com")

	w = send(engine, http.MethodPut, "/api/v1/auth/change-password", token, ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "new password must differ")

	w = send(engine, http.MethodPut, "/api/v1/auth/change-password", token, ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "another1",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(engine, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		FirstName: "Asha", LastName: "Rao", Email: "ASHA@example.com", Password: "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
