package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records/internal/dto"
	"github.com/noah-isme/academic-records/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context) dto.DashboardStats
}

// DashboardHandler serves the summary statistics shown on the dashboard.
type DashboardHandler struct {
	dashboard dashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard dashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats godoc
// @Summary Dashboard statistics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.dashboard.Stats(c.Request.Context()), nil)
}
