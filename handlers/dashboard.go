package handlers

import (
	"net/http"

	"emireminder/services/dashboard"
	"emireminder/utils"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	DashboardService dashboard.DashboardService
}

// SummaryHandler handles GET /api/dashboard/summary.
func (h *DashboardHandler) SummaryHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	resp, err := h.DashboardService.Summary(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpcomingHandler handles GET /api/dashboard/upcoming?days=N.
func (h *DashboardHandler) UpcomingHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bills, err := h.DashboardService.Upcoming(c.Request.Context(), userID, queryInt(c, "days", 0))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bills})
}

// OverdueHandler handles GET /api/dashboard/overdue.
func (h *DashboardHandler) OverdueHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	resp, err := h.DashboardService.Overdue(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MonthlySummaryHandler handles GET /api/dashboard/monthly-summary.
func (h *DashboardHandler) MonthlySummaryHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	month, year, err := monthYear(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	resp, err := h.DashboardService.MonthlySummary(c.Request.Context(), userID, month, year)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CalendarHandler handles GET /api/dashboard/calendar.
func (h *DashboardHandler) CalendarHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	month, year, err := monthYear(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	days, err := h.DashboardService.Calendar(c.Request.Context(), userID, month, year)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": days})
}

// monthYear reads ?month&year. Zero means the current month or year.
func monthYear(c *gin.Context) (int, int, error) {
	month, err := strictQueryInt(c, "month")
	if err != nil {
		return 0, 0, err
	}
	year, err := strictQueryInt(c, "year")
	if err != nil {
		return 0, 0, err
	}
	return month, year, nil
}
