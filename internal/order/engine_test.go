package order

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/addressbook"
	"storefront/internal/domain"
	"storefront/internal/models"
)

const (
	customerID = uint(1)
	sellerID   = uint(2)
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return &Engine{DB: db, Addresses: &addressbook.Service{DB: db}}
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stockCount int) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Description: "test product",
		Price:       decimal.RequireFromString(price),
		Stock:       stockCount,
		Category:    "homeware",
		SellerID:    sellerID,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func addToCart(t *testing.T, db *gorm.DB, userID uint, p models.Product, qty int) {
	t.Helper()
	require.NoError(t, db.Create(&models.CartItem{UserID: userID, ProductID: p.ID, Quantity: qty}).Error)
}

func freeformInput() CheckoutInput {
	return CheckoutInput{
		ContactName:        "Jamie Rook",
		ContactPhone:       "+1-555-0100",
		ContactEmail:       "jamie@example.com",
		ShippingAddress:    "12 Harbor Lane",
		ShippingCity:       "Portsmouth",
		ShippingPostalCode: "03801",
		ShippingCountry:    "United States",
	}
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func cartCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func orderCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestCheckout_EmptyCart(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	_, err := e.Checkout(context.Background(), customerID, freeformInput())
	require.ErrorIs(t, err, domain.ErrCartEmpty)
	assert.Zero(t, orderCount(t, e.DB))
}

func TestCheckout_TotalsAndSnapshot(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	a := seedProduct(t, e.DB, "teapot", "10.00", 5)
	b := seedProduct(t, e.DB, "cup", "5.00", 5)
	addToCart(t, e.DB, customerID, a, 1)
	addToCart(t, e.DB, customerID, b, 2)

	ord, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	// subtotal 20, tax 2.00, shipping 0, total 22.00
	assert.True(t, ord.TotalAmount.Equal(decimal.RequireFromString("22.00")), "got %s", ord.TotalAmount)
	assert.Equal(t, models.StatusPending, ord.Status)
	require.Len(t, ord.Items, 2)

	byProduct := map[uint]models.OrderItem{}
	for _, it := range ord.Items {
		byProduct[it.ProductID] = it
	}
	snapA := byProduct[a.ID]
	assert.Equal(t, "teapot", snapA.ProductName)
	assert.Equal(t, "homeware", snapA.ProductCategory)
	assert.True(t, snapA.Price.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 1, snapA.Quantity)

	assert.Equal(t, 4, productStock(t, e.DB, a.ID))
	assert.Equal(t, 3, productStock(t, e.DB, b.ID))
	assert.Zero(t, cartCount(t, e.DB, customerID), "checkout must consume the cart")
}

func TestCheckout_OrderNumberFormat(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)
	first, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	addToCart(t, e.DB, customerID, p, 1)
	second, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^ORD\d{8}-(\d{4}|[0-9a-f-]{8})$`)
	assert.Regexp(t, pattern, first.OrderNumber)
	assert.Regexp(t, pattern, second.OrderNumber)
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
}

func TestCheckout_InsufficientStockIsAllOrNothing(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	ok := seedProduct(t, e.DB, "teapot", "10.00", 10)
	short := seedProduct(t, e.DB, "cup", "5.00", 2)
	addToCart(t, e.DB, customerID, ok, 1)
	addToCart(t, e.DB, customerID, short, 3)

	_, err := e.Checkout(ctx, customerID, freeformInput())
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, short.ID, stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)

	assert.Zero(t, orderCount(t, e.DB))
	assert.Equal(t, 10, productStock(t, e.DB, ok.ID), "no partial stock mutation may survive")
	assert.Equal(t, 2, productStock(t, e.DB, short.ID))
	assert.EqualValues(t, 2, cartCount(t, e.DB, customerID), "cart must stay intact")
}

func TestCheckout_MissingShippingField(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)

	in := freeformInput()
	in.ShippingCity = ""
	_, err := e.Checkout(context.Background(), customerID, in)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 10, productStock(t, e.DB, p.ID))
}

func TestCheckout_SavedAddressOverridesForm(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	saved, err := e.Addresses.Create(ctx, customerID, addressbook.Input{
		Label:         "Home",
		RecipientName: "Robin Vale",
		Phone:         "+1-555-0199",
		Street:        "7 Quay Street",
		City:          "Bristol",
		PostalCode:    "BS1 4DB",
		Country:       "United Kingdom",
	})
	require.NoError(t, err)

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)

	in := freeformInput()
	in.SelectedAddressID = &saved.ID

	ord, err := e.Checkout(ctx, customerID, in)
	require.NoError(t, err)
	assert.Equal(t, "7 Quay Street", ord.ShippingAddress)
	assert.Equal(t, "Bristol", ord.ShippingCity)
	assert.Equal(t, "Robin Vale", ord.ContactName)
	assert.Equal(t, "+1-555-0199", ord.ContactPhone)
	assert.Equal(t, "jamie@example.com", ord.ContactEmail, "email always comes from the form")
}

func TestCheckout_SaveAddressJoinsTransaction(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)

	in := freeformInput()
	in.SaveAddress = true
	in.MakeDefault = true

	_, err := e.Checkout(ctx, customerID, in)
	require.NoError(t, err)

	addrs, err := e.Addresses.List(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.True(t, addrs[0].IsDefault)
	assert.Equal(t, "12 Harbor Lane", addrs[0].Street)
	assert.Equal(t, "12 Harbor Lane", addrs[0].Label, "label derives from the street when omitted")
}

func TestCheckout_SnapshotSurvivesProductEdit(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)
	ord, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	require.NoError(t, e.DB.Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":     "kettle",
		"price":    decimal.RequireFromString("99.99"),
		"category": "appliances",
	}).Error)

	var item models.OrderItem
	require.NoError(t, e.DB.Where("order_id = ?", ord.ID).First(&item).Error)
	assert.Equal(t, "teapot", item.ProductName)
	assert.Equal(t, "homeware", item.ProductCategory)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("10.00")))
}

func TestCancel_RestoresStockOnce(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 4)
	ord, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)
	require.Equal(t, 6, productStock(t, e.DB, p.ID))

	cancelled, err := e.Cancel(ctx, customerID, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, 10, productStock(t, e.DB, p.ID))

	// Second cancel must fail and must not double-restore.
	_, err = e.Cancel(ctx, customerID, ord.ID)
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusCancelled, transitionErr.From)
	assert.Equal(t, 10, productStock(t, e.DB, p.ID))
}

func TestCancel_ProcessingIsCancellable(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)
	ord, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	_, err = e.UpdateStatus(ctx, sellerID, ord.ID, models.StatusProcessing)
	require.NoError(t, err)

	_, err = e.Cancel(ctx, customerID, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, productStock(t, e.DB, p.ID))
}

func TestCancel_ShippedIsTerminalForCustomer(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 2)
	ord, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	_, err = e.UpdateStatus(ctx, sellerID, ord.ID, models.StatusShipped)
	require.NoError(t, err)

	_, err = e.Cancel(ctx, customerID, ord.ID)
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusShipped, transitionErr.From)
	assert.Equal(t, 8, productStock(t, e.DB, p.ID), "shipped orders keep their reservation")
}

func TestCancel_OtherCustomersOrderNotFound(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)
	ord, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	_, err = e.Cancel(ctx, uint(77), ord.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatus_StampsShipAndDeliveryDates(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)
	ord, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	shipped, err := e.UpdateStatus(ctx, sellerID, ord.ID, models.StatusShipped)
	require.NoError(t, err)
	require.NotNil(t, shipped.ShippedDate)
	assert.Nil(t, shipped.DeliveredDate)

	delivered, err := e.UpdateStatus(ctx, sellerID, ord.ID, models.StatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredDate)
	assert.NotNil(t, delivered.ShippedDate, "ship date must survive later transitions")
}

func TestUpdateStatus_ForeignSellerNotFound(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)
	ord, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	_, err = e.UpdateStatus(ctx, uint(55), ord.ID, models.StatusShipped)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	_, err := e.UpdateStatus(context.Background(), sellerID, 1, models.OrderStatus(9))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestQueries_ScopedPerPrincipal(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)
	ord, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	mine, err := e.ForCustomer(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].Items, 1)

	other, err := e.ForCustomer(ctx, uint(77))
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = e.ByIDForCustomer(ctx, uint(77), ord.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	sellerOrders, err := e.ForSeller(ctx, sellerID)
	require.NoError(t, err)
	assert.Len(t, sellerOrders, 1)

	none, err := e.ForSeller(ctx, uint(55))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestConfirmation_IncludesEstimatedDelivery(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	ctx := context.Background()

	p := seedProduct(t, e.DB, "teapot", "10.00", 10)
	addToCart(t, e.DB, customerID, p, 1)
	ord, err := e.Checkout(ctx, customerID, freeformInput())
	require.NoError(t, err)

	conf, err := e.ConfirmationFor(ctx, customerID, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, ord.OrderNumber, conf.OrderNumber)
	expected := ord.OrderDate.Add(7 * 24 * time.Hour).Format("January 02, 2006")
	assert.Equal(t, expected, conf.EstimatedDelivery)
	assert.NotEmpty(t, conf.Message)
}
