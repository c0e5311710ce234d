package middleware

import (
	"net/http"
	"strings"
	"time"

	"parkly/internal/shared/config"
	"parkly/internal/shared/utils/response"
	"parkly/internal/users"
	"parkly/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// JWTAuth creates a JWT authentication middleware
func JWTAuth() gin.HandlerFunc {
	return JWTAuthWithConfig(config.Load())
}

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			logger.GetDefault().LogAuthFailure(c.Request.Context(), "invalid token", c.ClientIP())
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token claims", nil, nil)
			c.Abort()
			return
		}
		if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token type", nil, nil)
			c.Abort()
			return
		}
		userID, _ := claims["user_id"].(string)
		if userID == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "token has no subject", nil, nil)
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_email", claims["email"])
		c.Set("user_role", claims["role"])

		c.Next()
	}
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		if role, _ := userRole.(string); role != requiredRole {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(string(users.RoleAdmin))
}

// RequestLogger tags each request with an id and logs it once it completes
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		duration := time.Since(start)
		if len(c.Errors) > 0 {
			log.LogHTTPError(c, c.Errors.Last(), c.Writer.Status())
			return
		}
		log.LogHTTPRequest(c, duration)
	}
}
