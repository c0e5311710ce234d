package reservations

import (
	"parkly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Lock-free reads through the availability index
	rg.GET("/locations/:id/availability", controller.GetAvailability) // GET /api/v1/locations/:id/availability?zone=&startTime=&endTime=
	rg.GET("/locations/:id/quote", controller.GetQuote)               // GET /api/v1/locations/:id/quote?spotId=|zone=&startTime=&endTime=

	reservations := rg.Group("/reservations")
	reservations.Use(middleware.JWTAuth())
	{
		reservations.POST("", controller.CreateReservation)            // POST /api/v1/reservations
		reservations.GET("", controller.GetMyReservations)             // GET /api/v1/reservations
		reservations.GET("/:id", controller.GetReservation)            // GET /api/v1/reservations/:id
		reservations.POST("/:id/cancel", controller.CancelReservation) // POST /api/v1/reservations/:id/cancel
		reservations.POST("/:id/activate", middleware.RequireAdmin(), controller.ActivateReservation)
	}

	admin := rg.Group("/admin/reservations")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("", controller.GetAllReservations) // GET /api/v1/admin/reservations
		admin.POST("/sweep", controller.RunSweep)    // POST /api/v1/admin/reservations/sweep
	}
}
