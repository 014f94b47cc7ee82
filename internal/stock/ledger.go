// Package stock is the authoritative ledger for product stock counts.
// Only the order lifecycle engine mutates stock, always inside its own
// transaction; everything else just reads it.
package stock

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/models"
)

// Reserve atomically decrements a product's stock by qty. The decrement
// is conditional (stock >= qty), so concurrent reservations against the
// same product can never drive it negative.
func Reserve(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: reserve quantity must be > 0", domain.ErrValidation)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// No row matched: either the product is gone or stock ran short.
	var p models.Product
	if err := tx.First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
		}
		return err
	}
	return &domain.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   qty,
		Available:   p.Stock,
	}
}

// Release returns qty units to a product's stock, reversing an earlier
// reservation.
func Release(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: release quantity must be > 0", domain.ErrValidation)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	return nil
}
