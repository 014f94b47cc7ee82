package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/models"
)

// Confirmation is the post-checkout summary shown to the customer.
type Confirmation struct {
	Order             models.Order `json:"order"`
	OrderNumber       string       `json:"order_number"`
	EstimatedDelivery string       `json:"estimated_delivery"`
	Message           string       `json:"message"`
}

// ForCustomer lists the customer's own orders, newest first.
func (e *Engine) ForCustomer(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := e.DB.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

// ByIDForCustomer fetches one order, scoped to its owner.
func (e *Engine) ByIDForCustomer(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var out models.Order
	err := e.DB.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND customer_id = ?", orderID, userID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ForSeller lists orders containing at least one of the seller's
// products, newest first.
func (e *Engine) ForSeller(ctx context.Context, sellerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := sellerScope(e.DB.WithContext(ctx), sellerID).
		Preload("Items").
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

// ConfirmationFor builds the confirmation view for a freshly placed
// order.
func (e *Engine) ConfirmationFor(ctx context.Context, userID, orderID uint) (*Confirmation, error) {
	ord, err := e.ByIDForCustomer(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return &Confirmation{
		Order:             *ord,
		OrderNumber:       ord.OrderNumber,
		EstimatedDelivery: ord.OrderDate.Add(7 * 24 * time.Hour).Format("January 02, 2006"),
		Message:           "Thank you for your order! We'll send you updates about your order status.",
	}, nil
}
