// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"examly/internal/auth"
	"examly/internal/reservations"
	"examly/internal/shared/config"
	"examly/internal/shared/database"
	"examly/internal/slots"
	"examly/pkg/cache"
	"examly/pkg/slotlock"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config       *config.Config
	db           *database.DB
	cacheService cache.Service
	gate         *slotlock.Gate
	publisher    reservations.EventPublisher
	slotService  slots.Service // For dependency injection
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher reservations.EventPublisher) *Router {
	r := &Router{
		config:    cfg,
		db:        db,
		gate:      slotlock.New(cfg.Booking.LockWaitTimeout),
		publisher: publisher,
	}

	if db.Redis != nil {
		r.cacheService = cache.NewService(db.GetRedisClient())
	}

	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Setup auth routes
		r.setupAuthRoutes(api)

		// Setup slot routes (must be before reservation routes for dependency injection)
		r.setupSlotRoutes(api)

		// Setup reservation routes
		r.setupReservationRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "examly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "examly-backend",
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
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController)

	authRouter.SetupRoutes(rg)
}

// setupSlotRoutes configures slot calendar routes
func (r *Router) setupSlotRoutes(rg *gin.RouterGroup) {
	slotRepo := slots.NewRepository(r.db.GetPostgreSQL())
	slotService := slots.NewService(slotRepo, slots.Settings{
		DefaultCapacity: r.config.Booking.SlotCapacity,
		SlotDuration:    r.config.Booking.SlotDuration,
		Location:        r.config.EventLocation(),
	})

	if r.cacheService != nil {
		slotService.SetCacheService(r.cacheService)
	}

	// Store slot service for dependency injection
	r.slotService = slotService

	slotController := slots.NewController(slotService)
	slots.SetupSlotRoutes(rg, slotController)
}

// setupReservationRoutes configures reservation ledger routes
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	reservationRepo := reservations.NewRepository(r.db.GetPostgreSQL())
	reservationService := reservations.NewService(reservationRepo, r.slotService, r.gate, reservations.Settings{
		NoticeWindow: r.config.Booking.NoticeWindow,
		Location:     r.config.EventLocation(),
	})

	if r.cacheService != nil {
		reservationService.SetCacheService(r.cacheService)
	}
	if r.publisher != nil {
		reservationService.SetEventPublisher(r.publisher)
	}

	reservationController := reservations.NewController(reservationService)
	reservations.SetupReservationRoutes(rg, reservationController)
}
