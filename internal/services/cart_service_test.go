package services

import (
	"context"
	"math"
	"testing"

	"shop-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopService_CartAdd(t *testing.T) {
	tests := []struct {
		name          string
		stock         int64
		adds          []int64
		expectedError error
		expectedMsg   string
		expectedQty   int64
	}{
		{name: "single add", stock: 5, adds: []int64{3}, expectedQty: 3},
		{name: "merge within stock", stock: 5, adds: []int64{3, 2}, expectedQty: 5},
		{
			name:          "merge beyond stock",
			stock:         5,
			adds:          []int64{3, 3},
			expectedError: domain.ErrValidation,
			expectedMsg:   "Widget has exceeded limited stock (Instock: 5)",
			expectedQty:   3,
		},
		{
			name:          "merge near int64 max",
			stock:         5,
			adds:          []int64{1, math.MaxInt64},
			expectedError: domain.ErrValidation,
			expectedMsg:   "Widget has exceeded limited stock (Instock: 5)",
			expectedQty:   1,
		},
		{
			name:          "out of stock",
			stock:         0,
			adds:          []int64{1},
			expectedError: domain.ErrValidation,
		},
		{
			name:          "zero quantity",
			stock:         5,
			adds:          []int64{0},
			expectedError: domain.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _, _ := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", tt.stock))

			var err error
			for _, q := range tt.adds {
				if _, err = svc.CartAdd(ctx, TestCustomerID, TestProductID, q); err != nil {
					break
				}
			}

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				if tt.expectedMsg != "" {
					assert.EqualError(t, err, tt.expectedMsg)
				}
			} else {
				assert.NoError(t, err)
			}

			view, err := svc.CartView(ctx, TestCustomerID)
			require.NoError(t, err)
			var qty int64
			for _, l := range view.Items {
				qty += l.Quantity
			}
			assert.Equal(t, tt.expectedQty, qty)
		})
	}
}

func TestShopService_CartTotals(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t,
		CreateMockProduct(1, "Chips", "2.99", 50),
		CreateMockProduct(2, "Water", "1.50", 10),
	)

	_, err := svc.CartAdd(ctx, TestCustomerID, 1, 2)
	require.NoError(t, err)
	view, err := svc.CartAdd(ctx, TestCustomerID, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, "10.48", view.Total.StringFixed(2))
	assert.Equal(t, int64(5), view.ItemCount)
	assert.True(t, view.CanCheckout)
	require.Len(t, view.Items, 2)
	assert.Equal(t, uint64(1), view.Items[0].ProductID, "lines keep insertion order")
}

func TestShopService_CartUpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 5))

	_, err := svc.CartAdd(ctx, TestCustomerID, TestProductID, 2)
	require.NoError(t, err)

	view, err := svc.CartUpdate(ctx, TestCustomerID, TestProductID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), view.Items[0].Quantity)

	_, err = svc.CartUpdate(ctx, TestCustomerID, TestProductID, 6)
	assert.ErrorIs(t, err, domain.ErrValidation)

	view, err = svc.CartUpdate(ctx, TestCustomerID, TestProductID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = svc.CartRemove(ctx, TestCustomerID, TestProductID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CartAdd(ctx, TestCustomerID, 99, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShopService_CartViewFlagsStockIssues(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 5))

	_, err := svc.CartAdd(ctx, TestCustomerID, TestProductID, 3)
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, TestAdminID, TestProductID, -4)
	require.NoError(t, err)

	view, err := svc.CartView(ctx, TestCustomerID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	line := view.Items[0]
	assert.False(t, view.CanCheckout)
	assert.False(t, line.StockOK)
	assert.Equal(t, domain.ExceedsStock, line.StockIssue)
	assert.Equal(t, int64(1), line.CurrentStock)
	assert.Equal(t, "Widget has exceeded limited stock (Instock: 1)", line.StockMessage)
	assert.Equal(t, int64(3), line.Quantity, "viewing never mutates the cart")
}

func TestShopService_CartsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 5))

	_, err := svc.CartAdd(ctx, TestCustomerID, TestProductID, 2)
	require.NoError(t, err)

	view, err := svc.CartView(ctx, TestOtherID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = svc.CartView(ctx, TestAdminID)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}
