package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/addressbook"
	"storefront/internal/auth"
)

type AddressHandler struct {
	Addresses *addressbook.Service
}

func (h *AddressHandler) List(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.Addresses.List(c.Request().Context(), userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AddressHandler) Get(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	addr, err := h.Addresses.Get(c.Request().Context(), userID, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, addr)
}

func (h *AddressHandler) Create(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req addressbook.Input
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	addr, err := h.Addresses.Create(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, addr)
}

func (h *AddressHandler) Update(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req addressbook.Input
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	addr, err := h.Addresses.Update(c.Request().Context(), userID, id, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, addr)
}

func (h *AddressHandler) Delete(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Addresses.Delete(c.Request().Context(), userID, id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AddressHandler) SetDefault(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Addresses.SetDefault(c.Request().Context(), userID, id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
