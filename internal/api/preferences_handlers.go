package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobdeck-gateway/internal/models"
	"jobdeck-gateway/internal/storage"
)

// getThemeHandler handles GET /api/preferences/theme
func getThemeHandler(c echo.Context) error {
	theme, err := kvRepo.Get(storage.KeyTheme)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			c.Logger().Error("failed to read theme: ", err)
		}
		theme = string(models.ThemeLight)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"theme": theme,
	})
}

// updateThemeHandler handles PUT /api/preferences/theme. The change is
// broadcast so every open view switches in lock-step.
func updateThemeHandler(c echo.Context) error {
	var req models.UpdateThemeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if !models.ValidTheme(req.Theme) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "theme must be light or dark",
		})
	}

	if err := kvRepo.Set(storage.KeyTheme, req.Theme); err != nil {
		c.Logger().Error("failed to save theme: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to save theme",
		})
	}

	hub.ThemeChanged(models.Theme(req.Theme))

	return c.JSON(http.StatusOK, map[string]string{
		"theme": req.Theme,
	})
}
