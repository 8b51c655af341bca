package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"jobdeck-gateway/internal/models"
)

// listNotificationsHandler handles GET /api/notifications
func listNotificationsHandler(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "limit must be between 1 and 200",
			})
		}
		limit = parsed
	}

	list, err := notifications.List(limit)
	if err != nil {
		c.Logger().Error("list notifications error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list notifications",
		})
	}

	if list == nil {
		list = []*models.Notification{}
	}
	return c.JSON(http.StatusOK, list)
}
