package scheduler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostelbooking/internal/middleware"
	"hostelbooking/internal/modules/occupancy"
	"hostelbooking/internal/pkg/response"
)

type Handler struct {
	scheduler *Scheduler
	tracker   *occupancy.Tracker
}

func NewHandler(scheduler *Scheduler, tracker *occupancy.Tracker) *Handler {
	return &Handler{scheduler: scheduler, tracker: tracker}
}

// RegisterRoutes expects rg to be behind JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", middleware.AdminOnly())
	{
		admin.GET("/sweeps", h.ListJobs)
		admin.POST("/sweeps/:name", h.RunSweep)
		admin.POST("/rooms/:id/reconcile", h.ReconcileRoom)
	}
}

// ListJobs godoc
// @Summary      List sweep jobs
// @Tags         Admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200 {object} map[string]interface{} "data.jobs"
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      403 {object} response.ErrorEnvelope
// @Router       /admin/sweeps [get]
func (h *Handler) ListJobs(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"jobs": h.scheduler.Jobs()})
}

// RunSweep godoc
// @Summary      Run a sweep now
// @Tags         Admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        name path string true "Job name"
// @Success      200 {object} map[string]interface{} "data.report"
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      403 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      500 {object} response.ErrorEnvelope
// @Router       /admin/sweeps/{name} [post]
func (h *Handler) RunSweep(c *gin.Context) {
	report, err := h.scheduler.RunNow(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"job": c.Param("name"), "report": report})
}

// ReconcileRoom godoc
// @Summary      Reconcile room occupancy
// @Description  Recounts active bookings and repairs the room's occupancy and status.
// @Tags         Admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Room ID"
// @Success      200 {object} map[string]interface{} "data.reconcile"
// @Failure      400 {object} response.ErrorEnvelope
// @Failure      401 {object} response.ErrorEnvelope
// @Failure      403 {object} response.ErrorEnvelope
// @Failure      404 {object} response.ErrorEnvelope
// @Failure      503 {object} response.ErrorEnvelope
// @Router       /admin/rooms/{id}/reconcile [post]
func (h *Handler) ReconcileRoom(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || roomID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room id")
		return
	}
	res, err := h.tracker.Reconcile(c.Request.Context(), roomID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reconcile": res})
}
