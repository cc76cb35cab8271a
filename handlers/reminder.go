package handlers

import (
	"net/http"
	"strings"
	"time"

	"emireminder/models"
	"emireminder/services/reminder"
	"emireminder/utils"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	ReminderService reminder.ReminderService
}

// ListRemindersHandler handles GET /api/reminders.
func (h *ReminderHandler) ListRemindersHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	filter := models.ReminderFilter{
		UserID: userID,
		Status: strings.ToLower(c.Query("status")),
		BillID: c.Query("billId"),
		Page:   pageFrom(c),
	}
	switch models.ReminderStatus(filter.Status) {
	case "", models.ReminderPending, models.ReminderSent, models.ReminderFailed:
	default:
		utils.RespondError(c, utils.InvalidInput("status must be pending, sent or failed"))
		return
	}

	resp, err := h.ReminderService.ListReminders(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type rescheduleRequest struct {
	ReminderDate time.Time `json:"reminderDate" binding:"required"`
}

// RescheduleReminderHandler handles PUT /api/reminders/:id/reschedule.
func (h *ReminderHandler) RescheduleReminderHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.ReminderService.RescheduleOne(c.Request.Context(), userID, c.Param("id"), req.ReminderDate)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteReminderHandler handles DELETE /api/reminders/:id.
func (h *ReminderHandler) DeleteReminderHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.ReminderService.DeleteReminder(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted"})
}

type testReminderRequest struct {
	BillID  string `json:"billId" binding:"required"`
	Channel string `json:"channel" binding:"omitempty,channel"`
}

// TestReminderHandler handles POST /api/reminders/test. It only previews the
// message; nothing is delivered.
func (h *ReminderHandler) TestReminderHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req testReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	channel := models.ChannelPush
	if req.Channel != "" {
		channel, _ = models.ParseChannel(req.Channel)
	}

	msg, err := h.ReminderService.PreviewTest(c.Request.Context(), userID, req.BillID, channel)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": channel, "message": msg})
}
