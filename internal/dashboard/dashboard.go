// Package dashboard folds orders, order items and products into
// read-only seller aggregates. Every revenue and units-sold figure
// excludes Cancelled and Returned orders through a single shared scope.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/models"
)

const (
	topProductsLimit  = 10
	monthlyBuckets    = 12
	dailyWindowDays   = 30
	recentOrderWindow = 7 * 24 * time.Hour
	recentOrdersLimit = 10
)

type Service struct {
	DB *gorm.DB
	// LowStockThreshold marks products as low-stock at or below it.
	LowStockThreshold int
}

// soldItem is an order line joined with its order date, restricted to
// countable (non-cancelled, non-returned) orders.
type soldItem struct {
	OrderID     uint
	OrderDate   time.Time
	ProductID   uint
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

func (s *Service) soldItems(ctx context.Context, sellerID uint) ([]soldItem, error) {
	var rows []soldItem
	err := s.DB.WithContext(ctx).
		Table("order_items").
		Select("order_items.order_id, orders.order_date, order_items.product_id, order_items.product_name, order_items.quantity, order_items.price").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Where("orders.status NOT IN ?", []models.OrderStatus{models.StatusCancelled, models.StatusReturned}).
		Scan(&rows).Error
	return rows, err
}

func revenue(items []soldItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func distinctOrders(items []soldItem) int {
	seen := make(map[uint]struct{}, len(items))
	for _, it := range items {
		seen[it.OrderID] = struct{}{}
	}
	return len(seen)
}

type Overview struct {
	TotalProducts       int             `json:"total_products"`
	TotalStock          int             `json:"total_stock"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	LowStockProducts    int             `json:"low_stock_products"`
	OutOfStockProducts  int             `json:"out_of_stock_products"`

	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalItemsSold int             `json:"total_items_sold"`

	RecentOrders []RecentOrderItem   `json:"recent_orders"`
	MonthlySales []MonthlyBucket     `json:"monthly_sales"`
	Categories   []CategoryBreakdown `json:"category_breakdown"`
}

type RecentOrderItem struct {
	OrderID     uint            `json:"order_id"`
	OrderDate   time.Time       `json:"order_date"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type MonthlyBucket struct {
	Year       int             `json:"year"`
	Month      time.Month      `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

type CategoryBreakdown struct {
	Category       string          `json:"category"`
	ProductCount   int             `json:"product_count"`
	TotalStock     int             `json:"total_stock"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	Revenue        decimal.Decimal `json:"revenue"`
}

func (s *Service) Overview(ctx context.Context, sellerID uint) (*Overview, error) {
	var products []models.Product
	if err := s.DB.WithContext(ctx).Where("seller_id = ?", sellerID).Find(&products).Error; err != nil {
		return nil, err
	}
	sold, err := s.soldItems(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	out := &Overview{
		TotalProducts: len(products),
		TotalRevenue:  revenue(sold),
		TotalOrders:   distinctOrders(sold),
	}
	out.TotalInventoryValue = decimal.Zero
	for _, p := range products {
		out.TotalStock += p.Stock
		out.TotalInventoryValue = out.TotalInventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
		if p.Stock == 0 {
			out.OutOfStockProducts++
		} else if p.Stock <= s.LowStockThreshold {
			out.LowStockProducts++
		}
	}
	for _, it := range sold {
		out.TotalItemsSold += it.Quantity
	}

	out.RecentOrders = recentOrders(sold, time.Now().UTC())
	out.MonthlySales = monthlyBucketsAsc(sold)
	out.Categories = categoryBreakdown(products, sold)
	return out, nil
}

func recentOrders(sold []soldItem, now time.Time) []RecentOrderItem {
	cutoff := now.Add(-recentOrderWindow)
	recent := make([]RecentOrderItem, 0)
	for _, it := range sold {
		if it.OrderDate.Before(cutoff) {
			continue
		}
		recent = append(recent, RecentOrderItem{
			OrderID:     it.OrderID,
			OrderDate:   it.OrderDate,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Revenue:     it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].OrderDate.After(recent[j].OrderDate) })
	if len(recent) > recentOrdersLimit {
		recent = recent[:recentOrdersLimit]
	}
	return recent
}

type monthKey struct {
	year  int
	month time.Month
}

func foldMonthly(sold []soldItem) map[monthKey]*MonthlyBucket {
	buckets := make(map[monthKey]*MonthlyBucket)
	orders := make(map[monthKey]map[uint]struct{})
	for _, it := range sold {
		k := monthKey{it.OrderDate.Year(), it.OrderDate.Month()}
		b, ok := buckets[k]
		if !ok {
			b = &MonthlyBucket{Year: k.year, Month: k.month, Revenue: decimal.Zero}
			buckets[k] = b
			orders[k] = make(map[uint]struct{})
		}
		b.Revenue = b.Revenue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		orders[k][it.OrderID] = struct{}{}
	}
	for k, b := range buckets {
		b.OrderCount = len(orders[k])
	}
	return buckets
}

func monthlyBucketsAsc(sold []soldItem) []MonthlyBucket {
	m := foldMonthly(sold)
	out := make([]MonthlyBucket, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func categoryBreakdown(products []models.Product, sold []soldItem) []CategoryBreakdown {
	byProduct := make(map[uint]decimal.Decimal)
	for _, it := range sold {
		byProduct[it.ProductID] = byProduct[it.ProductID].Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	byCat := make(map[string]*CategoryBreakdown)
	for _, p := range products {
		c, ok := byCat[p.Category]
		if !ok {
			c = &CategoryBreakdown{Category: p.Category, InventoryValue: decimal.Zero, Revenue: decimal.Zero}
			byCat[p.Category] = c
		}
		c.ProductCount++
		c.TotalStock += p.Stock
		c.InventoryValue = c.InventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
		c.Revenue = c.Revenue.Add(byProduct[p.ID])
	}

	out := make([]CategoryBreakdown, 0, len(byCat))
	for _, c := range byCat {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
