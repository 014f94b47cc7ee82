package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	"storefront/internal/dashboard"
)

type DashboardHandler struct {
	Dashboard *dashboard.Service
}

func (h *DashboardHandler) Overview(c echo.Context) error {
	sellerID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.Dashboard.Overview(c.Request().Context(), sellerID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) Inventory(c echo.Context) error {
	sellerID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.Dashboard.Inventory(c.Request().Context(), sellerID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) Analytics(c echo.Context) error {
	sellerID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.Dashboard.Analytics(c.Request().Context(), sellerID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
