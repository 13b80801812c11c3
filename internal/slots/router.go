package slots

import (
	"examly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSlotRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse the slot calendar
	publicSlots := router.Group("/slots")
	{
		publicSlots.GET("/available-dates", controller.GetAvailableDates) // GET /api/v1/slots/available-dates?year=Y&month=M
		publicSlots.GET("", controller.GetDaySlots)                       // GET /api/v1/slots?date=YYYY-MM-DD&available_only=true
		publicSlots.GET("/:slotId", controller.GetSlot)                   // GET /api/v1/slots/:slotId
	}

	// Admin routes - only admins manage the calendar
	adminSlots := router.Group("/admin/slots")
	adminSlots.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminSlots.POST("", controller.CreateSlot)                // POST /api/v1/admin/slots
		adminSlots.POST("/generate", controller.GenerateCalendar) // POST /api/v1/admin/slots/generate
		adminSlots.DELETE("/:slotId", controller.DeleteSlot)      // DELETE /api/v1/admin/slots/:slotId
	}
}
