package payment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/middleware"
	"hostelbooking/internal/pkg/response"
	"hostelbooking/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects rg to be behind JWTAuth. Only staff record payments
// at the desk; students may settle their own booking fee.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings/:id/payments", h.ListPayments)
	rg.POST("/bookings/:id/booking-fee", h.PayBookingFee)

	staff := rg.Group("", middleware.RequireRole(domain.RoleStaff, domain.RoleAdmin))
	staff.POST("/bookings/:id/payments", h.RecordPayment)
}

// RecordPayment godoc
// @Summary      Record a desk payment
// @Description  Amount is in minor units and may not exceed the amount due.
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Param        body body RecordPaymentRequest true "Payment payload"
// @Success      201 {object} map[string]interface{} "data: Receipt"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      403 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      422 {object} response.ErrorEnvelope
// @Failure      503 {object} response.ErrorEnvelope
// @Router       /bookings/{id}/payments [post]
func (h *Handler) RecordPayment(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.BindErrors(err))
		return
	}
	req.ReceivedBy = middleware.ActorFrom(c).UserID

	receipt, err := h.service.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, receipt)
}

// PayBookingFee godoc
// @Summary      Pay the booking fee
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Param        body body BookingFeeRequest true "Fee payment"
// @Success      201 {object} map[string]interface{} "data: Receipt"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      409 {object} response.ErrorEnvelope
// @Failure      422 {object} response.ErrorEnvelope
// @Failure      503 {object} response.ErrorEnvelope
// @Router       /bookings/{id}/booking-fee [post]
func (h *Handler) PayBookingFee(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req BookingFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.BindErrors(err))
		return
	}

	receipt, err := h.service.PayBookingFee(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, receipt)
}

// ListPayments godoc
// @Summary      List payments for a booking
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Success      200 {object} map[string]interface{} "data.payments"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Router       /bookings/{id}/payments [get]
func (h *Handler) ListPayments(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	payments, err := h.service.ListPayments(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return 0, false
	}
	return id, true
}
