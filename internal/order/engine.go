// Package order is the order lifecycle engine: it turns a cart into an
// immutable order snapshot, reserves stock, and drives status
// transitions, each as a single transaction.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/addressbook"
	"storefront/internal/domain"
	"storefront/internal/models"
	"storefront/internal/stock"
)

// Flat 10% tax, zero shipping. The only tax rule there is.
var taxRate = decimal.RequireFromString("0.10")

type Engine struct {
	DB        *gorm.DB
	Addresses *addressbook.Service
}

// CheckoutInput carries the shipping/contact form. If SelectedAddressID
// is set and UsingNewAddress is false, the saved address overrides the
// freeform fields.
type CheckoutInput struct {
	SelectedAddressID *uint `json:"selected_address_id"`
	UsingNewAddress   bool  `json:"using_new_address"`

	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`

	ShippingAddress    string `json:"shipping_address"`
	ShippingCity       string `json:"shipping_city"`
	ShippingPostalCode string `json:"shipping_postal_code"`
	ShippingCountry    string `json:"shipping_country"`

	Notes         string `json:"notes"`
	PaymentMethod string `json:"payment_method"`

	// SaveAddress persists the freeform address to the address book in
	// the same transaction; MakeDefault marks it default.
	SaveAddress  bool   `json:"save_address"`
	MakeDefault  bool   `json:"make_default"`
	AddressLabel string `json:"address_label"`
}

// Checkout converts the user's cart into a Pending order. Stock check,
// order insert, line-item snapshots, stock decrement, optional address
// save and cart clear all commit or roll back together.
func (e *Engine) Checkout(ctx context.Context, userID uint, in CheckoutInput) (*models.Order, error) {
	var created *models.Order

	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cartItems []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&cartItems).Error; err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return domain.ErrCartEmpty
		}

		products, err := loadProducts(tx, cartItems)
		if err != nil {
			return err
		}

		usingSaved := in.SelectedAddressID != nil && !in.UsingNewAddress
		if usingSaved {
			var saved models.CustomerAddress
			err := tx.Where("id = ? AND user_id = ?", *in.SelectedAddressID, userID).First(&saved).Error
			switch {
			case err == nil:
				in.ShippingAddress = saved.Street
				in.ShippingCity = saved.City
				in.ShippingPostalCode = saved.PostalCode
				in.ShippingCountry = saved.Country
				in.ContactName = saved.RecipientName
				in.ContactPhone = saved.Phone
			case errors.Is(err, gorm.ErrRecordNotFound):
				// Stale selection: fall back to the freeform fields.
				usingSaved = false
			default:
				return err
			}
		}

		if err := validateShipping(in); err != nil {
			return err
		}

		// Reserve every line before touching anything else. Any
		// shortfall aborts the whole transaction.
		for _, ci := range cartItems {
			if err := stock.Reserve(tx, ci.ProductID, ci.Quantity); err != nil {
				return err
			}
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			p := products[ci.ProductID]
			subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(ci.Quantity))))
			items = append(items, models.OrderItem{
				ProductID:        p.ID,
				Quantity:         ci.Quantity,
				Price:            p.Price,
				ProductName:      p.Name,
				ProductCategory:  p.Category,
				ProductImagePath: firstImage(p),
			})
		}
		tax := subtotal.Mul(taxRate).Round(2)
		total := subtotal.Add(tax)

		now := time.Now().UTC()
		number, err := nextOrderNumber(tx, now)
		if err != nil {
			return err
		}

		paymentMethod := in.PaymentMethod
		if paymentMethod == "" {
			paymentMethod = "cash_on_delivery"
		}

		order := models.Order{
			CustomerID:         userID,
			OrderNumber:        number,
			Status:             models.StatusPending,
			TotalAmount:        total,
			ShippingAddress:    in.ShippingAddress,
			ShippingCity:       in.ShippingCity,
			ShippingPostalCode: in.ShippingPostalCode,
			ShippingCountry:    in.ShippingCountry,
			ContactName:        in.ContactName,
			ContactPhone:       in.ContactPhone,
			ContactEmail:       in.ContactEmail,
			Notes:              in.Notes,
			PaymentMethod:      paymentMethod,
			OrderDate:          now,
			Items:              items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if !usingSaved && in.SaveAddress {
			label := in.AddressLabel
			if label == "" {
				label = deriveLabel(in.ShippingAddress)
			}
			if _, err := addressbook.CreateTx(tx, userID, addressbook.Input{
				Label:         label,
				RecipientName: in.ContactName,
				Phone:         in.ContactPhone,
				Street:        in.ShippingAddress,
				City:          in.ShippingCity,
				PostalCode:    in.ShippingPostalCode,
				Country:       in.ShippingCountry,
				IsDefault:     in.MakeDefault,
			}); err != nil {
				return err
			}
		}

		// Cart is fully consumed by checkout.
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		created = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Cancel moves a Pending or Processing order to Cancelled and returns
// every reserved unit to stock. The status flip is a conditional update
// inside the same transaction as the stock release, so a concurrent
// double-cancel restores stock exactly once.
func (e *Engine) Cancel(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var out models.Order

	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").
			Where("id = ? AND customer_id = ?", orderID, userID).
			First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
			}
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", orderID,
				[]models.OrderStatus{models.StatusPending, models.StatusProcessing}).
			UpdateColumn("status", models.StatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race or the order already left the cancellable
			// window; report the current status.
			var current models.Order
			if err := tx.Select("status").First(&current, orderID).Error; err != nil {
				return err
			}
			return &domain.InvalidTransitionError{
				OrderID: orderID,
				From:    current.Status,
				To:      models.StatusCancelled,
			}
		}

		for _, item := range out.Items {
			if err := stock.Release(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		out.Status = models.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus lets a seller move an order containing at least one of
// their products to a new status. Transitions are deliberately
// permissive here (matching the established storefront behavior); only
// the customer cancel path restores stock.
func (e *Engine) UpdateStatus(ctx context.Context, sellerID, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %d", domain.ErrValidation, status)
	}

	var out models.Order
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := sellerScope(tx, sellerID).
			Preload("Items").
			Where("orders.id = ?", orderID).
			First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
			}
			return err
		}

		now := time.Now().UTC()
		out.Status = status
		switch status {
		case models.StatusShipped:
			out.ShippedDate = &now
		case models.StatusDelivered:
			out.DeliveredDate = &now
		}

		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// sellerScope restricts an order query to orders containing at least one
// of the seller's products.
func sellerScope(tx *gorm.DB, sellerID uint) *gorm.DB {
	return tx.Model(&models.Order{}).Where(
		"EXISTS (SELECT 1 FROM order_items oi JOIN products p ON p.id = oi.product_id WHERE oi.order_id = orders.id AND p.seller_id = ?)",
		sellerID,
	)
}

func loadProducts(tx *gorm.DB, items []models.CartItem) (map[uint]models.Product, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	var products []models.Product
	if err := tx.Preload("Images").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, it := range items {
		if _, ok := byID[it.ProductID]; !ok {
			return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, it.ProductID)
		}
	}
	return byID, nil
}

func validateShipping(in CheckoutInput) error {
	switch {
	case in.ContactName == "":
		return fmt.Errorf("%w: contact_name required", domain.ErrValidation)
	case in.ContactPhone == "":
		return fmt.Errorf("%w: contact_phone required", domain.ErrValidation)
	case in.ContactEmail == "" || !strings.Contains(in.ContactEmail, "@"):
		return fmt.Errorf("%w: valid contact_email required", domain.ErrValidation)
	case in.ShippingAddress == "":
		return fmt.Errorf("%w: shipping_address required", domain.ErrValidation)
	case in.ShippingCity == "":
		return fmt.Errorf("%w: shipping_city required", domain.ErrValidation)
	case in.ShippingPostalCode == "":
		return fmt.Errorf("%w: shipping_postal_code required", domain.ErrValidation)
	case in.ShippingCountry == "":
		return fmt.Errorf("%w: shipping_country required", domain.ErrValidation)
	}
	return nil
}

func firstImage(p models.Product) string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].ImagePath
}

// deriveLabel builds an address-book label from the street when the
// caller didn't supply one.
func deriveLabel(street string) string {
	if street == "" {
		return "Address"
	}
	if len(street) > 25 {
		return street[:25]
	}
	return street
}
