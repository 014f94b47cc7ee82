package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/events"
)

type AuthHandler struct {
	Catalog   *catalog.Service
	JWTSecret []byte
	Producer  *events.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req catalog.RegisterInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Catalog.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Catalog.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httpError(c, err)
	}

	token, err := auth.Sign(user.ID, user.Role, h.JWTSecret)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}
