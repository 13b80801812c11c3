package reservations

import (
	"examly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(router *gin.RouterGroup, controller Controller) {
	// User routes - authenticated users manage their own reservations
	userReservations := router.Group("/reservations")
	userReservations.Use(middleware.JWTAuth())
	{
		userReservations.POST("", controller.CreateReservation)                  // POST /api/v1/reservations
		userReservations.GET("", controller.GetMyReservations)                   // GET /api/v1/reservations
		userReservations.GET("/:reservationId", controller.GetReservation)       // GET /api/v1/reservations/:reservationId
		userReservations.PUT("/:reservationId", controller.UpdateReservation)    // PUT /api/v1/reservations/:reservationId
		userReservations.DELETE("/:reservationId", controller.DeleteReservation) // DELETE /api/v1/reservations/:reservationId
	}

	// Admin routes - confirmation charges slot capacity, admins only
	adminReservations := router.Group("/admin/reservations")
	adminReservations.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminReservations.GET("", controller.GetAllReservations)                         // GET /api/v1/admin/reservations
		adminReservations.POST("/:reservationId/confirm", controller.ConfirmReservation) // POST /api/v1/admin/reservations/:reservationId/confirm
	}
}
