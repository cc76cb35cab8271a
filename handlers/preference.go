package handlers

import (
	"net/http"

	"emireminder/models"
	"emireminder/services/preference"
	"emireminder/utils"

	"github.com/gin-gonic/gin"
)

type PreferenceHandler struct {
	PreferenceService preference.PreferenceService
}

// GetPreferencesHandler handles GET /api/users/preferences.
func (h *PreferenceHandler) GetPreferencesHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	pref, err := h.PreferenceService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

// UpdatePreferencesHandler handles PUT /api/users/preferences.
func (h *PreferenceHandler) UpdatePreferencesHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var patch models.PreferencePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		bindError(c, err)
		return
	}
	pref, err := h.PreferenceService.UpdatePreferences(c.Request.Context(), userID, patch)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}
