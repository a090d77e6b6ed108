package deposit

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

// ApplyToBooking godoc
// @Summary      Pay a booking from deposit credit
// @Description  The amount is clamped to what the booking still owes.
// @Tags         Deposits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Param        body body ApplyDepositRequest true "Amount to apply"
// @Success      201 {object} map[string]interface{} "data: Application"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      422 {object} response.ErrorEnvelope
// @Failure      503 {object} response.ErrorEnvelope
// @Router       /bookings/{id}/apply-deposit [post]
func (h *Handler) ApplyToBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}
	var req ApplyDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.BindErrors(err))
		return
	}

	app, err := h.service.ApplyToBooking(c.Request.Context(), middleware.ActorFrom(c).UserID, bookingID, req.Amount)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, app)
}

// RegisterDeposit godoc
// @Summary      Register a gateway deposit
// @Description  Verifies the reference with the payment gateway. Replaying a known reference returns the stored deposit with 200.
// @Tags         Deposits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body RegisterDepositRequest true "Gateway reference"
// @Success      201 {object} map[string]interface{} "data.deposit"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      409 {object} response.ErrorEnvelope
// @Failure      422 {object} response.ErrorEnvelope
// @Router       /deposits [post]
func (h *Handler) RegisterDeposit(c *gin.Context) {
	var req RegisterDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.BindErrors(err))
		return
	}

	d, created, err := h.service.RegisterDeposit(c.Request.Context(), middleware.ActorFrom(c).UserID, req.Reference, domain.DepositType(req.DepositType))
	if err != nil {
		response.FromError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"deposit": d})
}

// GetMyDeposits godoc
// @Summary      Get the caller's deposit statement
// @Tags         Deposits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200 {object} map[string]interface{} "data: Statement"
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      500 {object} response.ErrorEnvelope
// @Router       /deposits/me [get]
func (h *Handler) GetMyDeposits(c *gin.Context) {
	st, err := h.service.Statement(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}
