package services

import (
	"context"
	"strings"
	"testing"

	"shop-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// placeOrder checks out one Widget for the customer and returns the order id.
func placeOrder(t *testing.T, svc *ShopService, customerID uint64) uint64 {
	t.Helper()
	ctx := context.Background()
	_, err := svc.CartAdd(ctx, customerID, TestProductID, 1)
	require.NoError(t, err)
	res, err := svc.Checkout(ctx, customerID, CheckoutRequest{Method: "wallet", Credential: "GoPay"})
	require.NoError(t, err)
	return res.Order.ID
}

func TestShopService_OrderVisibility(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 10))
	mine := placeOrder(t, svc, TestCustomerID)
	theirs := placeOrder(t, svc, TestOtherID)

	tests := []struct {
		name          string
		userID        uint64
		orderID       uint64
		expectedError error
	}{
		{name: "owner", userID: TestCustomerID, orderID: mine},
		{name: "admin", userID: TestAdminID, orderID: theirs},
		{name: "other customer", userID: TestCustomerID, orderID: theirs, expectedError: domain.ErrAuthorization},
		{name: "missing order", userID: TestCustomerID, orderID: 99, expectedError: domain.ErrNotFound},
		{name: "unknown user", userID: 42, orderID: mine, expectedError: domain.ErrAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := svc.GetOrder(ctx, tt.userID, tt.orderID)
			_, rerr := svc.GetReceipt(ctx, tt.userID, tt.orderID)
			_, ierr := svc.GetInvoice(ctx, tt.userID, tt.orderID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.ErrorIs(t, rerr, tt.expectedError)
				assert.ErrorIs(t, ierr, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, rerr)
			assert.NoError(t, ierr)
			assert.Equal(t, tt.orderID, order.ID)
		})
	}

	t.Run("listing", func(t *testing.T) {
		own, err := svc.ListOrders(ctx, TestCustomerID)
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.Equal(t, mine, own[0].ID)

		all, err := svc.ListOrders(ctx, TestAdminID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestShopService_UpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 10))
	id := placeOrder(t, svc, TestCustomerID)

	_, err := svc.UpdateOrderStatus(ctx, TestCustomerID, id, "Shipped")
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = svc.UpdateOrderStatus(ctx, TestAdminID, id, "Lost")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateOrderStatus(ctx, TestAdminID, 99, "Shipped")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	order, err := svc.UpdateOrderStatus(ctx, TestAdminID, id, "Shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, order.Status)

	// Any status may follow any other.
	order, err = svc.UpdateOrderStatus(ctx, TestAdminID, id, "Placed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, order.Status)

	pub.AssertCalled(t, "Publish", mock.Anything, domain.EventOrderStatusChanged, mock.MatchedBy(func(e domain.OrderStatusChangedEvent) bool {
		return e.OrderID == id && e.From == domain.StatusPlaced && e.To == domain.StatusShipped
	}))
}

func TestShopService_PrintReceipt(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 10))
	id := placeOrder(t, svc, TestCustomerID)

	text, err := svc.PrintReceipt(ctx, TestCustomerID, id)
	require.NoError(t, err)
	assert.True(t, strings.Contains(text, "Receipt No: RCP-2000"))
	assert.Contains(t, text, "Thank you for your purchase!")

	_, err = svc.PrintReceipt(ctx, TestCustomerID, id)
	assert.ErrorIs(t, err, domain.ErrReceiptAlreadyPrinted)

	doc, err := svc.GetReceipt(ctx, TestCustomerID, id)
	require.NoError(t, err)
	assert.Equal(t, "RCP-2000", doc.ReceiptNumber)
}

func TestShopService_ReceiptMissingAfterDecline(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 10))
	svc.SetPaymentFactory(DecliningPayments)

	_, err := svc.CartAdd(ctx, TestCustomerID, TestProductID, 1)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, TestCustomerID, CheckoutRequest{Method: "wallet"})
	require.ErrorIs(t, err, domain.ErrPaymentFailed)

	_, err = svc.GetReceipt(ctx, TestCustomerID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	inv, err := svc.GetInvoice(ctx, TestCustomerID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceUnpaid, inv.Status)
}

func TestShopService_AdminInvoices(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, CreateMockProduct(TestProductID, "Widget", "2.00", 10))
	id := placeOrder(t, svc, TestCustomerID)

	_, err := svc.ListInvoices(ctx, TestCustomerID)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	docs, err := svc.ListInvoices(ctx, TestAdminID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "INV-1000", docs[0].InvoiceNumber)

	text, err := svc.InvoiceText(ctx, TestAdminID, id)
	require.NoError(t, err)
	assert.Contains(t, text, "Invoice No: INV-1000")
	assert.Contains(t, text, "Status: Paid")

	_, err = svc.InvoiceText(ctx, TestAdminID, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
