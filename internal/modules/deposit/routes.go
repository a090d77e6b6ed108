package deposit

import "github.com/gin-gonic/gin"

// RegisterRoutes expects rg to be behind JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/apply-deposit", h.ApplyToBooking)

	deposits := rg.Group("/deposits")
	{
		deposits.POST("", h.RegisterDeposit)
		deposits.GET("/me", h.GetMyDeposits)
	}
}
