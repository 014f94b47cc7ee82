package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	"storefront/internal/events"
	"storefront/internal/logging"
	"storefront/internal/models"
	"storefront/internal/order"
)

type OrderHandler struct {
	Engine   *order.Engine
	Producer *events.Producer
}

func (h *OrderHandler) publish(c echo.Context, userID uint, event map[string]any) {
	h.Producer.Publish(c.Request().Context(), fmt.Sprint(userID), event)
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req order.CheckoutInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	ord, err := h.Engine.Checkout(ctx, userID, req)
	if err != nil {
		return httpError(c, err)
	}

	logging.FromContext(ctx).Info("order placed",
		"order_id", ord.ID, "order_number", ord.OrderNumber, "total", ord.TotalAmount)
	h.publish(c, userID, map[string]any{
		"type":         "order_created",
		"order_id":     ord.ID,
		"order_number": ord.OrderNumber,
	})
	return c.JSON(http.StatusCreated, ord)
}

func (h *OrderHandler) List(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Engine.ForCustomer(c.Request().Context(), userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ord, err := h.Engine.ByIDForCustomer(c.Request().Context(), userID, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) Confirmation(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	conf, err := h.Engine.ConfirmationFor(c.Request().Context(), userID, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, conf)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ord, err := h.Engine.Cancel(c.Request().Context(), userID, id)
	if err != nil {
		return httpError(c, err)
	}

	h.publish(c, userID, map[string]any{
		"type":     "order_cancelled",
		"order_id": ord.ID,
	})
	return c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) SellerList(c echo.Context) error {
	sellerID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Engine.ForSeller(c.Request().Context(), sellerID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	sellerID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ord, err := h.Engine.UpdateStatus(c.Request().Context(), sellerID, id, req.Status)
	if err != nil {
		return httpError(c, err)
	}

	h.publish(c, sellerID, map[string]any{
		"type":     "order_status_changed",
		"order_id": ord.ID,
		"status":   ord.Status.String(),
	})
	return c.JSON(http.StatusOK, ord)
}
