package handlers

import (
	"net/http"

	"emireminder/services/insight"
	"emireminder/utils"

	"github.com/gin-gonic/gin"
)

type InsightHandler struct {
	InsightService insight.InsightService
}

// ExplainBillHandler handles GET /api/insights/bills/:id.
func (h *InsightHandler) ExplainBillHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	resp, err := h.InsightService.ExplainBill(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MonthlyInsightsHandler handles GET /api/insights/monthly.
func (h *InsightHandler) MonthlyInsightsHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	month, year, err := monthYear(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	resp, err := h.InsightService.MonthlyInsights(c.Request.Context(), userID, month, year)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
