package dashboard

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

type StockStatus string

const (
	StockOut    StockStatus = "out_of_stock"
	StockLow    StockStatus = "low_stock"
	StockMedium StockStatus = "medium_stock"
	StockGood   StockStatus = "good_stock"
)

const mediumStockCeiling = 20

type ProductInventory struct {
	Product             models.Product  `json:"product"`
	TotalSold           int             `json:"total_sold"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	InventoryValue      decimal.Decimal `json:"inventory_value"`
	AverageSalesPerMonth float64        `json:"average_sales_per_month"`
	LastSaleDate        *time.Time      `json:"last_sale_date,omitempty"`
	RecommendedRestock  int             `json:"recommended_restock"`
	StockStatus         StockStatus     `json:"stock_status"`
}

// Inventory reports per-product sales and restock guidance, sorted by
// stock ascending so the most urgent products come first.
func (s *Service) Inventory(ctx context.Context, sellerID uint) ([]ProductInventory, error) {
	var products []models.Product
	if err := s.DB.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("stock ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	sold, err := s.soldItems(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[uint][]soldItem)
	for _, it := range sold {
		byProduct[it.ProductID] = append(byProduct[it.ProductID], it)
	}

	now := time.Now().UTC()
	out := make([]ProductInventory, 0, len(products))
	for _, p := range products {
		items := byProduct[p.ID]

		inv := ProductInventory{
			Product:        p,
			TotalRevenue:   revenue(items),
			InventoryValue: p.Price.Mul(decimal.NewFromInt(int64(p.Stock))),
			StockStatus:    s.bucket(p.Stock),
		}
		for _, it := range items {
			inv.TotalSold += it.Quantity
		}

		if len(items) > 0 {
			first := items[0].OrderDate
			last := items[0].OrderDate
			for _, it := range items[1:] {
				if it.OrderDate.Before(first) {
					first = it.OrderDate
				}
				if it.OrderDate.After(last) {
					last = it.OrderDate
				}
			}
			inv.LastSaleDate = &last

			months := math.Max(1, now.Sub(first).Hours()/24/30)
			avg := float64(inv.TotalSold) / months
			inv.AverageSalesPerMonth = math.Round(avg*10) / 10

			// Keep roughly two months of sales on hand.
			if restock := int(avg*2) - p.Stock; restock > 0 {
				inv.RecommendedRestock = restock
			}
		}

		out = append(out, inv)
	}
	return out, nil
}

func (s *Service) bucket(stockCount int) StockStatus {
	switch {
	case stockCount == 0:
		return StockOut
	case stockCount <= s.LowStockThreshold:
		return StockLow
	case stockCount <= mediumStockCeiling:
		return StockMedium
	default:
		return StockGood
	}
}

type TopProduct struct {
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type DailyBucket struct {
	Date       time.Time       `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

type Analytics struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	MonthlyRevenue    []MonthlyBucket `json:"monthly_revenue"`
	TopProducts       []TopProduct    `json:"top_products"`
	DailySales        []DailyBucket   `json:"daily_sales"`
}

// Analytics builds the sales analytics view: totals, latest monthly
// buckets, top products by revenue and a zero-filled 30-day series.
func (s *Service) Analytics(ctx context.Context, sellerID uint) (*Analytics, error) {
	sold, err := s.soldItems(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	out := &Analytics{
		TotalRevenue:      revenue(sold),
		TotalOrders:       distinctOrders(sold),
		AverageOrderValue: decimal.Zero,
	}
	if out.TotalOrders > 0 {
		out.AverageOrderValue = out.TotalRevenue.Div(decimal.NewFromInt(int64(out.TotalOrders))).Round(2)
	}

	monthly := monthlyBucketsAsc(sold)
	// Latest months first, capped at a year.
	for i, j := 0, len(monthly)-1; i < j; i, j = i+1, j-1 {
		monthly[i], monthly[j] = monthly[j], monthly[i]
	}
	if len(monthly) > monthlyBuckets {
		monthly = monthly[:monthlyBuckets]
	}
	out.MonthlyRevenue = monthly

	out.TopProducts = topProducts(sold)
	out.DailySales = dailySales(sold, time.Now().UTC())
	return out, nil
}

func topProducts(sold []soldItem) []TopProduct {
	byProduct := make(map[uint]*TopProduct)
	for _, it := range sold {
		tp, ok := byProduct[it.ProductID]
		if !ok {
			tp = &TopProduct{ProductID: it.ProductID, ProductName: it.ProductName, TotalRevenue: decimal.Zero}
			byProduct[it.ProductID] = tp
		}
		tp.TotalSold += it.Quantity
		tp.TotalRevenue = tp.TotalRevenue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	out := make([]TopProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue) })
	if len(out) > topProductsLimit {
		out = out[:topProductsLimit]
	}
	return out
}

// dailySales zero-fills one bucket per day for the trailing window so
// chart consumers never interpolate over gaps.
func dailySales(sold []soldItem, now time.Time) []DailyBucket {
	today := now.Truncate(24 * time.Hour)

	revByDay := make(map[time.Time]decimal.Decimal)
	ordersByDay := make(map[time.Time]map[uint]struct{})
	for _, it := range sold {
		day := it.OrderDate.UTC().Truncate(24 * time.Hour)
		revByDay[day] = revByDay[day].Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		if ordersByDay[day] == nil {
			ordersByDay[day] = make(map[uint]struct{})
		}
		ordersByDay[day][it.OrderID] = struct{}{}
	}

	out := make([]DailyBucket, 0, dailyWindowDays)
	for i := dailyWindowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		b := DailyBucket{Date: day, Revenue: decimal.Zero}
		if r, ok := revByDay[day]; ok {
			b.Revenue = r
			b.OrderCount = len(ordersByDay[day])
		}
		out = append(out, b)
	}
	return out
}
