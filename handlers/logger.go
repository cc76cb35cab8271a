package handlers

import (
	"net/http"
	"strconv"

	"emireminder/models"
	"emireminder/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request logger set by middleware.RequestLogger,
// or the global logger.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// currentUser reads the authenticated user ID. It writes a 401 and returns
// false when the auth middleware did not run.
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Missing authenticated user"})
		return "", false
	}
	return userID, true
}

func pageFrom(c *gin.Context) models.Page {
	return models.Page{
		Number: queryInt(c, "page", 1),
		Size:   queryInt(c, "pageSize", models.DefaultPageSize),
	}.Normalize()
}

// queryInt returns fallback when the parameter is absent or not a number.
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// strictQueryInt is like queryInt but rejects malformed values.
func strictQueryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, utils.InvalidInput("%s must be a number", key)
	}
	return n, nil
}

func bindError(c *gin.Context, err error) {
	getLogger(c).Debug("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, utils.ErrorResponse{
		Message: "Invalid request body",
		Details: err.Error(),
	})
}
