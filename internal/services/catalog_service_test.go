package services

import (
	"bytes"
	"context"
	"testing"

	"shop-service/internal/domain"
	"shop-service/internal/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestShopService_ListProducts(t *testing.T) {
	ctx := context.Background()
	hidden := CreateMockProduct(2, "Retired", "1.00", 3)
	hidden.Active = false
	svc, _, _ := newTestService(t,
		CreateMockProduct(1, "Widget", "2.00", 5),
		hidden,
		CreateMockProduct(3, "Empty", "4.00", 0),
	)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, uint64(1), products[0].ID)
	assert.True(t, products[0].Available)
	assert.False(t, products[1].Available, "sold out products stay listed")

	_, err = svc.GetProduct(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShopService_CreateProduct(t *testing.T) {
	tests := []struct {
		name          string
		userID        uint64
		input         NewProduct
		expectedError error
	}{
		{
			name:   "admin creates product",
			userID: TestAdminID,
			input:  NewProduct{SKU: "NEW1", Name: "Gadget", Price: decimal.RequireFromString("9.99"), Stock: 4},
		},
		{
			name:          "customer is refused",
			userID:        TestCustomerID,
			input:         NewProduct{SKU: "NEW1", Name: "Gadget", Price: decimal.RequireFromString("9.99")},
			expectedError: domain.ErrAuthorization,
		},
		{
			name:          "negative price",
			userID:        TestAdminID,
			input:         NewProduct{SKU: "NEW1", Name: "Gadget", Price: decimal.RequireFromString("-1")},
			expectedError: domain.ErrValidation,
		},
		{
			name:          "missing name",
			userID:        TestAdminID,
			input:         NewProduct{SKU: "NEW1"},
			expectedError: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t, CreateMockProduct(1, "Widget", "2.00", 5))
			view, err := svc.CreateProduct(context.Background(), tt.userID, tt.input)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(2), view.ID, "ids continue past the highest existing product")
			assert.True(t, view.Active)
			assert.Equal(t, int64(4), view.Stock)
		})
	}
}

func TestShopService_UpdateProductInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 5))
	cache := new(mocks.MockProductCache)
	cache.On("Invalidate", mock.Anything, []uint64{TestProductID}).Return()
	cache.On("Product", mock.Anything, TestProductID).Return()
	svc.SetProductCache(cache)

	price := decimal.RequireFromString("3.50")
	view, err := svc.UpdateProduct(ctx, TestAdminID, TestProductID, domain.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "3.50", view.Price.StringFixed(2))

	got, err := svc.GetProduct(ctx, TestProductID)
	require.NoError(t, err)
	assert.Equal(t, "3.50", got.Price.StringFixed(2))

	empty := ""
	_, err = svc.UpdateProduct(ctx, TestAdminID, TestProductID, domain.ProductPatch{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrValidation)

	cache.AssertExpectations(t)
	pub.AssertCalled(t, "Publish", mock.Anything, domain.EventProductUpdated, mock.Anything)
}

func TestShopService_AdjustStockClamps(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 5))

	view, err := svc.AdjustStock(ctx, TestAdminID, TestProductID, -8)
	require.NoError(t, err)
	assert.Equal(t, int64(0), view.Stock)
	assert.False(t, view.Available)
	assert.Equal(t, int64(0), stockOf(t, store, TestProductID))

	view, err = svc.AdjustStock(ctx, TestAdminID, TestProductID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), view.Stock)
}

func TestShopService_Export(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 5))
	placeOrder(t, svc, TestCustomerID)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportProducts(ctx, TestAdminID, &buf))
	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet := file.Sheet["Products"]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Widget", sheet.Rows[1].Cells[2].Value)
	assert.Equal(t, "4", sheet.Rows[1].Cells[4].Value)

	buf.Reset()
	require.NoError(t, svc.ExportOrders(ctx, TestAdminID, &buf))
	file, err = xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheet["Orders"].Rows, 2)
	require.Len(t, file.Sheet["Lines"].Rows, 2)
	assert.Equal(t, "2.00", file.Sheet["Orders"].Rows[1].Cells[4].Value)

	assert.ErrorIs(t, svc.ExportOrders(ctx, TestCustomerID, &buf), domain.ErrAuthorization)
}
