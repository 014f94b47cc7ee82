package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus values match the persisted enum (1-6).
type OrderStatus int

const (
	StatusPending    OrderStatus = 1
	StatusProcessing OrderStatus = 2
	StatusShipped    OrderStatus = 3
	StatusDelivered  OrderStatus = 4
	StatusCancelled  OrderStatus = 5
	StatusReturned   OrderStatus = 6
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusShipped:
		return "shipped"
	case StatusDelivered:
		return "delivered"
	case StatusCancelled:
		return "cancelled"
	case StatusReturned:
		return "returned"
	}
	return "unknown"
}

// Valid reports whether s is one of the persisted enum values.
func (s OrderStatus) Valid() bool {
	return s >= StatusPending && s <= StatusReturned
}

// Cancellable reports whether a customer may still cancel an order in
// this status.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string `gorm:"unique;not null"           json:"username"`
	Email        string `gorm:"not null"                  json:"email"`
	PasswordHash string `gorm:"not null"                  json:"-"`
	Role         string `gorm:"not null;default:customer" json:"role"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name        string          `gorm:"not null"                    json:"name"`
	Description string          `gorm:"not null"                    json:"description"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Stock       int             `gorm:"not null;check:stock>=0"     json:"stock"`
	Category    string          `gorm:"index"                       json:"category"`
	SellerID    uint            `gorm:"index;not null"              json:"seller_id"`
	Images      []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"index;not null"           json:"product_id"`
	ImagePath string `gorm:"not null"                 json:"image_path"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"                   json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity>0"                  json:"quantity"`
}

type CustomerAddress struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint       `gorm:"index;not null"           json:"user_id"`
	Label         string     `gorm:"not null"                 json:"label"`
	RecipientName string     `gorm:"not null"                 json:"recipient_name"`
	Phone         string     `gorm:"not null"                 json:"phone"`
	Street        string     `gorm:"not null"                 json:"street"`
	City          string     `gorm:"not null"                 json:"city"`
	State         string     `json:"state,omitempty"`
	PostalCode    string     `gorm:"not null"                 json:"postal_code"`
	Country       string     `gorm:"not null"                 json:"country"`
	IsDefault     bool       `gorm:"not null;default:false"   json:"is_default"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type Order struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID  uint        `gorm:"index;not null"           json:"customer_id"`
	OrderNumber string      `gorm:"uniqueIndex;not null"     json:"order_number"`
	Status      OrderStatus `gorm:"not null"                 json:"status"`

	TotalAmount decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total_amount"`

	// Shipping/contact snapshot, fixed at checkout.
	ShippingAddress    string `gorm:"not null" json:"shipping_address"`
	ShippingCity       string `gorm:"not null" json:"shipping_city"`
	ShippingPostalCode string `gorm:"not null" json:"shipping_postal_code"`
	ShippingCountry    string `gorm:"not null" json:"shipping_country"`
	ContactName        string `gorm:"not null" json:"contact_name"`
	ContactPhone       string `gorm:"not null" json:"contact_phone"`
	ContactEmail       string `gorm:"not null" json:"contact_email"`

	Notes         string `json:"notes,omitempty"`
	PaymentMethod string `gorm:"not null;default:cash_on_delivery" json:"payment_method"`

	OrderDate     time.Time  `gorm:"not null;index" json:"order_date"`
	ShippedDate   *time.Time `json:"shipped_date,omitempty"`
	DeliveredDate *time.Time `json:"delivered_date,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem is the line-item snapshot taken at checkout. Product fields
// are copied, not joined, so later product edits never change it.
type OrderItem struct {
	ID               uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID          uint            `gorm:"index;not null"              json:"order_id"`
	ProductID        uint            `gorm:"index;not null"              json:"product_id"`
	Quantity         int             `gorm:"not null;check:quantity>0"   json:"quantity"`
	Price            decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	ProductName      string          `gorm:"not null"                    json:"product_name"`
	ProductCategory  string          `json:"product_category"`
	ProductImagePath string          `json:"product_image_path,omitempty"`
}

// Subtotal is the line total at the snapshotted price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// All lists every persisted model for migration.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&ProductImage{},
		&CartItem{},
		&CustomerAddress{},
		&Order{},
		&OrderItem{},
	}
}
