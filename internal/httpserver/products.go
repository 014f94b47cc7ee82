package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/events"
)

type ProductHandler struct {
	Catalog  *catalog.Service
	Producer *events.Producer
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	h.Producer.Publish(c.Request().Context(), fmt.Sprint(event["product_id"]), event)
}

func paramID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}

func queryIntDefault(c echo.Context, name string, def int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) List(c echo.Context) error {
	page := queryIntDefault(c, "page", 1)
	size := queryIntDefault(c, "size", 0)

	out, err := h.Catalog.List(c.Request().Context(), page, size)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) Create(c echo.Context) error {
	sellerID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Catalog.Create(c.Request().Context(), sellerID, req)
	if err != nil {
		return httpError(c, err)
	}

	h.publish(c, map[string]any{"type": "product_created", "product_id": p.ID, "name": p.Name})
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Update(c echo.Context) error {
	sellerID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Catalog.Update(c.Request().Context(), sellerID, id, req)
	if err != nil {
		return httpError(c, err)
	}

	h.publish(c, map[string]any{"type": "product_updated", "product_id": p.ID, "name": p.Name})
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	sellerID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Catalog.Delete(c.Request().Context(), sellerID, id); err != nil {
		return httpError(c, err)
	}

	h.publish(c, map[string]any{"type": "product_deleted", "product_id": id})
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) AddImage(c echo.Context) error {
	sellerID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		ImagePath string `json:"image_path"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	img, err := h.Catalog.AddImage(c.Request().Context(), sellerID, id, req.ImagePath)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, img)
}
