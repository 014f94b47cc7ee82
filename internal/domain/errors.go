package domain

import (
	"errors"
	"fmt"

	"storefront/internal/models"
)

var (
	// ErrValidation indicates malformed input. Nothing was mutated.
	ErrValidation = errors.New("validation")
	// ErrNotFound indicates the entity is absent or not owned by the
	// acting principal.
	ErrNotFound = errors.New("not found")
	// ErrCartEmpty indicates checkout was attempted with no cart lines.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrInvariant indicates internal bookkeeping went wrong; the
	// surrounding transaction must be aborted. Never shown to clients.
	ErrInvariant = errors.New("invariant violation")
)

// InsufficientStockError reports a cart line or checkout exceeding the
// live stock of a product.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (product %d): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

// InvalidTransitionError reports an order status change that the state
// machine forbids.
type InvalidTransitionError struct {
	OrderID uint
	From    models.OrderStatus
	To      models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d: cannot move from %s to %s", e.OrderID, e.From, e.To)
}
