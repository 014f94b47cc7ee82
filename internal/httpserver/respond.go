package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/logging"
)

// httpError maps the domain error taxonomy onto HTTP responses. Internal
// failures (including invariant violations) never leak details.
func httpError(c echo.Context, err error) error {
	var stockErr *domain.InsufficientStockError
	var transitionErr *domain.InvalidTransitionError

	l := logging.FromContext(c.Request().Context())

	switch {
	case errors.Is(err, domain.ErrValidation):
		l.Warn("request rejected", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrNotFound):
		l.Warn("request rejected", "status", http.StatusNotFound, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "not found")

	case errors.Is(err, domain.ErrCartEmpty):
		l.Warn("request rejected", "status", http.StatusConflict, "error", err)
		return echo.NewHTTPError(http.StatusConflict, "cart is empty")

	case errors.As(err, &stockErr):
		l.Warn("request rejected", "status", http.StatusConflict, "error", err)
		return echo.NewHTTPError(http.StatusConflict, map[string]any{
			"error":        "insufficient stock",
			"product_id":   stockErr.ProductID,
			"product_name": stockErr.ProductName,
			"available":    stockErr.Available,
		})

	case errors.As(err, &transitionErr):
		l.Warn("request rejected", "status", http.StatusConflict, "error", err)
		return echo.NewHTTPError(http.StatusConflict, transitionErr.Error())

	case errors.Is(err, catalog.ErrBadCredentials):
		l.Warn("request rejected", "status", http.StatusUnauthorized)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	l.Error("request failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
