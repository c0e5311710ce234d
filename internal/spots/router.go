package spots

import (
	"parkly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSpotRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public catalog browsing
	locations := rg.Group("/locations")
	{
		locations.GET("", controller.GetLocations)          // GET /api/v1/locations
		locations.GET("/:id", controller.GetLocation)       // GET /api/v1/locations/:id
		locations.GET("/:id/spots", controller.GetSpots)    // GET /api/v1/locations/:id/spots?zone=VIP
	}
	rg.GET("/spots/:id", controller.GetSpot) // GET /api/v1/spots/:id

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("/locations", controller.CreateLocation)          // POST /api/v1/admin/locations
		admin.POST("/locations/:id/spots", controller.CreateSpots)   // POST /api/v1/admin/locations/:id/spots
		admin.PUT("/spots/:id/status", controller.UpdateSpotStatus)  // PUT /api/v1/admin/spots/:id/status
	}
}
