package reservations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"examly/internal/shared/utils/response"
	"examly/internal/slots"
	"examly/internal/users"
)

type Controller interface {
	CreateReservation(c *gin.Context)
	GetReservation(c *gin.Context)
	GetMyReservations(c *gin.Context)
	GetAllReservations(c *gin.Context)
	UpdateReservation(c *gin.Context)
	DeleteReservation(c *gin.Context)
	ConfirmReservation(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// actorFromContext resolves the authenticated caller set by the JWT middleware
func actorFromContext(c *gin.Context) (Actor, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return Actor{}, false
	}

	id, err := uuid.Parse(userID.(string))
	if err != nil {
		return Actor{}, false
	}

	role := users.RoleUser
	if userRole, exists := c.Get("user_role"); exists {
		role = users.Role(userRole.(string))
	}

	return Actor{ID: id, Role: role}, true
}

// statusForError maps service errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrReservationNotFound), errors.Is(err, slots.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyConfirmed), errors.Is(err, ErrNotPending), errors.Is(err, ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, ErrWindowClosed), errors.Is(err, ErrInvalidHeadcount), errors.Is(err, slots.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, ErrSlotBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (ctrl *controller) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.CreateReservation(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondJSON(c, "error", statusForError(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Reservation created successfully", reservation, nil)
}

func (ctrl *controller) GetReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("reservationId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.GetReservation(c.Request.Context(), actor, reservationID)
	if err != nil {
		response.RespondJSON(c, "error", statusForError(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation retrieved successfully", reservation, nil)
}

func (ctrl *controller) GetMyReservations(c *gin.Context) {
	var query ReservationListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	page, err := ctrl.service.GetUserReservations(c.Request.Context(), actor, query)
	if err != nil {
		response.RespondJSON(c, "error", statusForError(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservations retrieved successfully", page, nil)
}

func (ctrl *controller) GetAllReservations(c *gin.Context) {
	var query ReservationListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	page, err := ctrl.service.GetAllReservations(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", statusForError(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservations retrieved successfully", page, nil)
}

func (ctrl *controller) UpdateReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("reservationId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	var req UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.UpdateReservation(c.Request.Context(), actor, reservationID, req)
	if err != nil {
		response.RespondJSON(c, "error", statusForError(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation updated successfully", reservation, nil)
}

func (ctrl *controller) DeleteReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("reservationId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	if err := ctrl.service.DeleteReservation(c.Request.Context(), actor, reservationID); err != nil {
		response.RespondJSON(c, "error", statusForError(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation deleted successfully", nil, nil)
}

func (ctrl *controller) ConfirmReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("reservationId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.ConfirmReservation(c.Request.Context(), actor, reservationID)
	if err != nil {
		response.RespondJSON(c, "error", statusForError(err), err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation confirmed successfully", reservation, nil)
}
