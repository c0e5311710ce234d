package auth

import (
	"parkly/internal/shared/config"
	"parkly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

type Router struct {
	controller *Controller
	config     *config.Config
}

// NewRouter takes the same config the service signs tokens with, so the middleware verifies with the same secret.
func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes mounts /auth. Sign-up, login and refresh are public; the rest need an access token.
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/register", r.controller.Register)
	auth.POST("/login", r.controller.Login)
	auth.POST("/refresh", r.controller.RefreshToken)

	account := auth.Group("", middleware.JWTAuthWithConfig(r.config))
	account.GET("/me", r.controller.GetMe)
	account.PUT("/change-password", r.controller.ChangePassword)
}
