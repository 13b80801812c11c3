package slots

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"examly/internal/shared/utils/response"
)

type Controller interface {
	CreateSlot(c *gin.Context)
	GenerateCalendar(c *gin.Context)
	GetSlot(c *gin.Context)
	GetDaySlots(c *gin.Context)
	GetAvailableDates(c *gin.Context)
	DeleteSlot(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateSlot(c *gin.Context) {
	var req CreateSlotRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	slot, err := ctrl.service.CreateSlot(req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrDuplicateSlot) {
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Slot created successfully", slot, nil)
}

func (ctrl *controller) GenerateCalendar(c *gin.Context) {
	var req GenerateCalendarRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	inserted, err := ctrl.service.GenerateCalendar(req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Slot calendar generated successfully", gin.H{
		"slots_created": inserted,
	}, nil)
}

func (ctrl *controller) GetSlot(c *gin.Context) {
	slotID, err := uuid.Parse(c.Param("slotId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid slot ID", nil, err.Error())
		return
	}

	slot, err := ctrl.service.GetSlotByID(slotID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrSlotNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Slot retrieved successfully", slot, nil)
}

func (ctrl *controller) GetDaySlots(c *gin.Context) {
	var query DaySlotsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	daySlots, err := ctrl.service.GetDaySlots(query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Slots retrieved successfully", daySlots, nil)
}

func (ctrl *controller) GetAvailableDates(c *gin.Context) {
	var query AvailableDatesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	dates, err := ctrl.service.GetAvailableDates(query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Available dates retrieved successfully", dates, nil)
}

func (ctrl *controller) DeleteSlot(c *gin.Context) {
	slotID, err := uuid.Parse(c.Param("slotId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid slot ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeleteSlot(slotID); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrSlotNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Slot deleted successfully", nil, nil)
}
