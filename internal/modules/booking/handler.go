package booking

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/middleware"
	"hostelbooking/internal/pkg/apperror"
	"hostelbooking/internal/pkg/response"
	"hostelbooking/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects rg to be behind JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/me", h.ListMyBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.PATCH("/bookings/:id/cancel", h.CancelBooking)

	staff := rg.Group("", middleware.RequireRole(domain.RoleStaff, domain.RoleAdmin))
	staff.PATCH("/bookings/:id/confirm", h.ConfirmBooking)
	staff.PATCH("/bookings/:id/check-in", h.CheckIn)
	staff.PATCH("/bookings/:id/check-out", h.CheckOut)
	staff.DELETE("/bookings/:id", h.DeleteBooking)
}

// CreateBooking godoc
// @Summary      Create a booking
// @Description  Students book for themselves. Staff may pass student_id to book on a student's behalf.
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateBookingRequest true "Booking payload"
// @Success      201 {object} map[string]interface{} "data.booking"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      409 {object} response.ErrorEnvelope
// @Failure      422 {object} response.ErrorEnvelope
// @Failure      503 {object} response.ErrorEnvelope
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.BindErrors(err))
		return
	}

	checkIn, ok := parseDate(req.CheckInDate)
	if !ok {
		response.FromError(c, apperror.Wrapf(domain.ErrInvalidDates, "check_in_date %q is not a date", req.CheckInDate))
		return
	}
	checkOut, ok := parseDate(req.CheckOutDate)
	if !ok {
		response.FromError(c, apperror.Wrapf(domain.ErrInvalidDates, "check_out_date %q is not a date", req.CheckOutDate))
		return
	}

	actor := middleware.ActorFrom(c)
	studentID := actor.UserID
	if actor.IsStaff() && req.StudentID > 0 {
		studentID = req.StudentID
	}

	view, err := h.service.Create(c.Request.Context(), CreateInput{
		StudentID:    studentID,
		RoomID:       req.RoomID,
		BookingType:  domain.BookingType(req.BookingType),
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Notes:        req.Notes,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": view})
}

// GetBooking godoc
// @Summary      Get a booking
// @Description  Students only see their own bookings.
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Success      200 {object} map[string]interface{} "data.booking"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Router       /bookings/{id} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	view, err := h.service.GetByID(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": view})
}

// ListMyBookings godoc
// @Summary      List the caller's bookings
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        limit query int false "Page size (default 20)"
// @Param        offset query int false "Offset"
// @Success      200 {object} map[string]interface{} "data.bookings"
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      500 {object} response.ErrorEnvelope
// @Router       /bookings/me [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	views, err := h.service.ListForStudent(c.Request.Context(), middleware.ActorFrom(c).UserID, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": views})
}

// ConfirmBooking godoc
// @Summary      Confirm a pending booking
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Success      200 {object} map[string]interface{} "data.booking"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      403 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      422 {object} response.ErrorEnvelope
// @Failure      503 {object} response.ErrorEnvelope
// @Router       /bookings/{id}/confirm [patch]
func (h *Handler) ConfirmBooking(c *gin.Context) {
	h.respond(c, h.service.Confirm)
}

// CheckIn godoc
// @Summary      Check a student in
// @Description  Requires a confirmed, fully paid booking whose check-in date has arrived.
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Success      200 {object} map[string]interface{} "data.booking"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      403 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      422 {object} response.ErrorEnvelope
// @Failure      503 {object} response.ErrorEnvelope
// @Router       /bookings/{id}/check-in [patch]
func (h *Handler) CheckIn(c *gin.Context) {
	h.respond(c, h.service.CheckIn)
}

// CheckOut godoc
// @Summary      Check a student out
// @Description  Frees the occupied slot on the room.
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Success      200 {object} map[string]interface{} "data.booking"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      403 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      422 {object} response.ErrorEnvelope
// @Failure      503 {object} response.ErrorEnvelope
// @Router       /bookings/{id}/check-out [patch]
func (h *Handler) CheckOut(c *gin.Context) {
	h.respond(c, h.service.CheckOut)
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Description  The body is optional.
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Param        body body CancelBookingRequest false "Cancellation reason"
// @Success      200 {object} map[string]interface{} "data.booking"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      422 {object} response.ErrorEnvelope
// @Failure      503 {object} response.ErrorEnvelope
// @Router       /bookings/{id}/cancel [patch]
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.BindErrors(err))
			return
		}
	}

	view, err := h.service.Cancel(c.Request.Context(), middleware.ActorFrom(c), id, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": view})
}

// DeleteBooking godoc
// @Summary      Delete a booking
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Success      200 {object} map[string]interface{} "data.deleted"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      403 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      503 {object} response.ErrorEnvelope
// @Router       /bookings/{id} [delete]
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) respond(c *gin.Context, op func(ctx context.Context, id int64) (domain.BookingView, error)) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	view, err := op(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": view})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return 0, false
	}
	return id, true
}
