// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"parkly/internal/auth"
	"parkly/internal/reservations"
	"parkly/internal/shared/config"
	"parkly/internal/shared/database"
	"parkly/internal/spots"
	"parkly/internal/vehicles"
	"parkly/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config       *config.Config
	db           *database.DB
	cacheService cache.Service
	publisher    reservations.EventPublisher

	// filled while routes are set up, for injection into later groups
	spotService        spots.Service
	vehicleService     vehicles.Service
	reservationService reservations.Service
}

// NewRouter creates a new router instance. publisher may be nil when Kafka is disabled.
func NewRouter(cfg *config.Config, db *database.DB, publisher reservations.EventPublisher) *Router {
	return &Router{
		config:       cfg,
		db:           db,
		cacheService: cache.NewService(db.Redis),
		publisher:    publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)

		// spots and vehicles must be set up before reservations, which depend on both
		r.setupSpotRoutes(api)
		r.setupVehicleRoutes(api)
		r.setupReservationRoutes(api)
	}
}

// ReservationService exposes the service built by SetupRoutes to the sweeper and payment consumer.
func (r *Router) ReservationService() reservations.Service {
	return r.reservationService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "parkly",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "parkly",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"db_driver":   r.db.SQL.Dialector.Name(),
			"redis":       r.db.Redis != nil,
			"kafka":       r.publisher != nil,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.SQL)
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)
}

// setupSpotRoutes configures location and spot catalog routes
func (r *Router) setupSpotRoutes(rg *gin.RouterGroup) {
	spotRepo := spots.NewRepository(r.db.SQL)
	r.spotService = spots.NewService(spotRepo, r.cacheService)
	spotController := spots.NewController(r.spotService)

	spots.SetupSpotRoutes(rg, spotController)
}

// setupVehicleRoutes configures vehicle registration routes
func (r *Router) setupVehicleRoutes(rg *gin.RouterGroup) {
	vehicleRepo := vehicles.NewRepository(r.db.SQL)
	r.vehicleService = vehicles.NewService(vehicleRepo, r.cacheService)
	vehicleController := vehicles.NewController(r.vehicleService)

	vehicles.SetupVehicleRoutes(rg, vehicleController)
}

// setupReservationRoutes configures the allocator and reservation routes
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	ledger := reservations.NewLedger(r.db.SQL)
	allocator := reservations.NewAllocator(ledger, reservations.Options{
		Timeout:   r.config.Reservation.AllocationTimeout,
		BatchSize: r.config.Reservation.SweepBatchSize,
		Vehicles:  r.vehicleService,
		Events:    r.publisher,
		Cache:     r.spotService,
	})
	r.spotService.SetStatusGuard(allocator)
	r.reservationService = reservations.NewService(allocator, ledger, r.config.Reservation.RetryBackoff)
	reservationController := reservations.NewController(r.reservationService)

	reservations.SetupReservationRoutes(rg, reservationController)
}
