package vehicles

import (
	"parkly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupVehicleRoutes(rg *gin.RouterGroup, controller *Controller) {
	vehicles := rg.Group("/vehicles")
	vehicles.Use(middleware.JWTAuth())
	{
		vehicles.POST("", controller.RegisterVehicle)     // POST /api/v1/vehicles
		vehicles.GET("", controller.GetMyVehicles)        // GET /api/v1/vehicles
		vehicles.DELETE("/:id", controller.DeleteVehicle) // DELETE /api/v1/vehicles/:id
	}
}
