// Package cart holds per-user cart lines. The cart reads stock to
// validate quantities but never writes it; reservation happens only at
// checkout.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/models"
)

type Service struct {
	DB *gorm.DB
}

// Line is a cart item joined with its product for display and totals.
type Line struct {
	Item     models.CartItem `json:"item"`
	Product  models.Product  `json:"product"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func (s *Service) Items(ctx context.Context, userID uint) ([]Line, error) {
	var items []models.CartItem
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	var products []models.Product
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]Line, 0, len(items))
	for _, it := range items {
		p := byID[it.ProductID]
		lines = append(lines, Line{
			Item:     it,
			Product:  p,
			Subtotal: p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	return lines, nil
}

// Total is the derived cart value: sum of price*quantity over the user's
// lines. It is never stored.
func (s *Service) Total(ctx context.Context, userID uint) (decimal.Decimal, error) {
	lines, err := s.Items(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total, nil
}

// AddItem adds qty units of a product to the user's cart. If the product
// is already in the cart the quantities accumulate; the combined
// quantity must fit in current stock or the whole operation is rejected
// and the existing line stays untouched.
func (s *Service) AddItem(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", domain.ErrValidation)
	}

	var item models.CartItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
			}
			return err
		}

		existing := 0
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
		switch {
		case err == nil:
			existing = item.Quantity
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		combined := existing + qty
		if combined > product.Stock {
			return &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   combined,
				Available:   product.Stock,
			}
		}

		if existing > 0 {
			item.Quantity = combined
			return tx.Save(&item).Error
		}
		item = models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateQuantity sets a line's quantity exactly. Zero or negative
// removes the line; more than current stock is rejected.
func (s *Service) UpdateQuantity(ctx context.Context, userID, cartItemID uint, qty int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := tx.Where("id = ? AND user_id = ?", cartItemID, userID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: cart item %d", domain.ErrNotFound, cartItemID)
			}
			return err
		}

		if qty <= 0 {
			return tx.Delete(&item).Error
		}

		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			return err
		}
		if qty > product.Stock {
			return &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   qty,
				Available:   product.Stock,
			}
		}

		item.Quantity = qty
		return tx.Save(&item).Error
	})
}

func (s *Service) RemoveItem(ctx context.Context, userID, cartItemID uint) error {
	return s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", cartItemID, userID).
		Delete(&models.CartItem{}).Error
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

// Count is the total number of units in the cart, for badge displays.
func (s *Service) Count(ctx context.Context, userID uint) (int64, error) {
	var total *int64
	err := s.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Select("SUM(quantity)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
