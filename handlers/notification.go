package handlers

import (
	"net/http"

	"emireminder/services/notification"
	"emireminder/services/reminder"
	"emireminder/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	NotificationService notification.NotificationService
	ReminderService     reminder.ReminderService
}

type registerFCMRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

// RegisterFCMHandler handles POST /api/notifications/register-fcm.
func (h *NotificationHandler) RegisterFCMHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req registerFCMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.NotificationService.RegisterFCMToken(c.Request.Context(), userID, req.FCMToken); err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("FCM token registered", zap.String("userId", userID))
	c.JSON(http.StatusOK, gin.H{"message": "FCM token registered"})
}

// HistoryHandler handles GET /api/notifications/history.
func (h *NotificationHandler) HistoryHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	resp, err := h.ReminderService.History(c.Request.Context(), userID, pageFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
