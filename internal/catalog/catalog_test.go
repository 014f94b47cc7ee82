package catalog

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/models"
)

const (
	sellerID      = uint(1)
	otherSellerID = uint(2)
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return &Service{DB: db}
}

func productInput(name, price string, stockCount int) ProductInput {
	return ProductInput{
		Name:        name,
		Description: "test product",
		Price:       decimal.RequireFromString(price),
		Stock:       stockCount,
		Category:    "homeware",
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sellerID, productInput("teapot", "10.00", 5))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "teapot", got.Name)
	assert.Equal(t, sellerID, got.SellerID)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("10.00")))
}

func TestCreateProduct_Validation(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, sellerID, productInput("", "10.00", 5))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Create(ctx, sellerID, productInput("teapot", "0", 5))
	require.ErrorIs(t, err, domain.ErrValidation, "price must be strictly positive")

	bad := productInput("teapot", "10.00", -1)
	_, err = s.Create(ctx, sellerID, bad)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateProduct_SellerScoped(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sellerID, productInput("teapot", "10.00", 5))
	require.NoError(t, err)

	updated, err := s.Update(ctx, sellerID, created.ID, productInput("kettle", "12.50", 8))
	require.NoError(t, err)
	assert.Equal(t, "kettle", updated.Name)
	assert.Equal(t, 8, updated.Stock)

	_, err = s.Update(ctx, otherSellerID, created.ID, productInput("stolen", "1.00", 1))
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "kettle", got.Name, "foreign update must not land")
}

func TestDeleteProduct_SellerScoped(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sellerID, productInput("teapot", "10.00", 5))
	require.NoError(t, err)

	require.ErrorIs(t, s.Delete(ctx, otherSellerID, created.ID), domain.ErrNotFound)
	require.NoError(t, s.Delete(ctx, sellerID, created.ID))

	_, err = s.Get(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListProducts_Paginated(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := s.Create(ctx, sellerID, productInput("item", "10.00", 1))
		require.NoError(t, err)
	}

	page, err := s.List(ctx, 2, 3)
	require.NoError(t, err)
	assert.Len(t, page.Data, 3)
	assert.Equal(t, 2, page.Meta.Page)
	assert.EqualValues(t, 7, page.Meta.Total)
	assert.EqualValues(t, 3, page.Meta.TotalPages)

	last, err := s.List(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, last.Data, 1)
}

func TestAddImage(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sellerID, productInput("teapot", "10.00", 5))
	require.NoError(t, err)

	_, err = s.AddImage(ctx, sellerID, created.ID, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.AddImage(ctx, otherSellerID, created.ID, "uploads/teapot.jpg")
	require.ErrorIs(t, err, domain.ErrNotFound)

	img, err := s.AddImage(ctx, sellerID, created.ID, "uploads/teapot.jpg")
	require.NoError(t, err)
	assert.Equal(t, created.ID, img.ProductID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "uploads/teapot.jpg", got.Images[0].ImagePath)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, RegisterInput{
		Username: "robin",
		Email:    "robin@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCustomer, user.Role, "role defaults to customer")
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	got, err := s.Authenticate(ctx, "robin", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.Authenticate(ctx, "robin", "wrong-password")
	require.ErrorIs(t, err, ErrBadCredentials)

	_, err = s.Authenticate(ctx, "nobody", "hunter2hunter2")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing username", RegisterInput{Email: "a@b.c", Password: "longenough"}},
		{"bad email", RegisterInput{Username: "a", Email: "not-an-email", Password: "longenough"}},
		{"short password", RegisterInput{Username: "a", Email: "a@b.c", Password: "short"}},
		{"unknown role", RegisterInput{Username: "a", Email: "a@b.c", Password: "longenough", Role: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(ctx, tc.in)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUserByID(t *testing.T) {
	t.Parallel()
	s := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, RegisterInput{
		Username: "marta",
		Email:    "marta@example.com",
		Password: "longenough",
		Role:     auth.RoleSeller,
	})
	require.NoError(t, err)

	got, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleSeller, got.Role)

	_, err = s.UserByID(ctx, 4242)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
