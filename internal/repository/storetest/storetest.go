// Package storetest checks a repository.Store implementation against the
// behavior every backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// Run executes the shared cases. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Run("missing records", func(t *testing.T) { missing(t, newStore(t)) })
	t.Run("products and users", func(t *testing.T) { productsAndUsers(t, newStore(t)) })
	t.Run("cart round trip", func(t *testing.T) { carts(t, newStore(t)) })
	t.Run("orders payments invoices", func(t *testing.T) { orders(t, newStore(t)) })
	t.Run("sequences", func(t *testing.T) { sequences(t, newStore(t)) })
}

func missing(t *testing.T, s repository.Store) {
	ctx := context.Background()

	p, err := s.FindProduct(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, p)
	u, err := s.FindUserByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, u)
	c, err := s.FindCart(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, c)
	o, err := s.FindOrder(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, o)
	pay, err := s.FindPaymentByOrder(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, pay)
	inv, err := s.FindInvoiceByOrder(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, inv)
}

func productsAndUsers(t *testing.T, s repository.Store) {
	ctx := context.Background()

	p := &domain.Product{ID: 5, SKU: "SNACK001", Name: "Chips", Price: decimal.RequireFromString("2.99"), Stock: 50, Active: true, UpdatedAt: at}
	require.NoError(t, s.SaveProduct(ctx, p))
	p.Stock = 1
	got, err := s.FindProduct(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(50), got.Stock, "stored values do not alias the caller's")
	assert.Equal(t, "2.99", got.Price.StringFixed(2))

	got.Stock = 48
	require.NoError(t, s.SaveProduct(ctx, got))
	list, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(48), list[0].Stock)

	id, err := s.NextProductID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), id, "product ids continue past saved rows")

	require.NoError(t, s.SaveUser(ctx, domain.NewCustomer(1, "customer@example.com", "pw", "John Doe", "123 Main St")))
	require.NoError(t, s.SaveUser(ctx, domain.NewAdmin(2, "admin@example.com", "pw")))
	u, err := s.FindUserByEmail(ctx, "Customer@Example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "John Doe", u.Profile.Name)
	a, err := s.FindUser(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.True(t, a.CanManageInventory())

	uid, err := s.NextUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), uid)
}

func carts(t *testing.T, s repository.Store) {
	ctx := context.Background()
	chips := &domain.Product{ID: 1, Name: "Chips", Price: decimal.RequireFromString("2.99"), Stock: 5, Active: true}
	water := &domain.Product{ID: 2, Name: "Water", Price: decimal.RequireFromString("1.50"), Stock: 5, Active: true}

	c := domain.NewCart(1)
	require.NoError(t, c.Add(chips, 2))
	require.NoError(t, c.Add(water, 1))
	require.NoError(t, s.SaveCart(ctx, c))

	got, err := s.FindCart(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, uint64(1), got.Lines[0].ProductID)
	assert.Equal(t, "7.48", got.Total().StringFixed(2))

	require.NoError(t, got.Remove(1))
	require.NoError(t, s.SaveCart(ctx, got))
	got, err = s.FindCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, uint64(2), got.Lines[0].ProductID)

	got.Clear()
	require.NoError(t, s.SaveCart(ctx, got))
	got, err = s.FindCart(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsEmpty())
}

func orders(t *testing.T, s repository.Store) {
	ctx := context.Background()
	lines := []domain.OrderLine{
		{ProductID: 1, ProductName: "Chips", Quantity: 3, UnitPrice: decimal.RequireFromString("2.00")},
	}
	o := domain.NewOrder(1, 7, lines, at)
	require.NoError(t, s.SaveOrder(ctx, o))
	require.NoError(t, s.SaveOrder(ctx, domain.NewOrder(2, 8, nil, at)))

	o.Status = domain.StatusShipped
	require.NoError(t, s.SaveOrder(ctx, o))

	got, err := s.FindOrder(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.StatusShipped, got.Status)
	require.Len(t, got.Lines, 1, "saving again does not duplicate lines")
	assert.Equal(t, "6.00", got.Total.StringFixed(2))

	mine, err := s.FindOrdersByCustomer(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	all, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint64(1), all[0].ID)

	inv := domain.NewInvoice(1000, o, "John Doe", at, 0)
	require.NoError(t, s.SaveInvoice(ctx, inv))
	inv.MarkPaid()
	require.NoError(t, s.SaveInvoice(ctx, inv))
	gotInv, err := s.FindInvoiceByOrder(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, gotInv)
	assert.True(t, gotInv.IsPaid())
	require.Len(t, gotInv.Items, 1)
	assert.Equal(t, "Chips", gotInv.Items[0].ProductName)
	invoices, err := s.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)

	failed := domain.NewPayment(1, 1, o.Total, domain.NewDigitalWallet("OVO"), at)
	failed.Status = domain.PaymentFailed
	require.NoError(t, s.SavePayment(ctx, failed))

	paid := domain.NewPayment(2, 1, o.Total, domain.NewPayPal("a@b.c"), at)
	require.True(t, paid.Process())
	paid.IssueReceipt(2000, "John Doe", o.Items(), at)
	require.NoError(t, s.SavePayment(ctx, paid))

	latest, err := s.FindPaymentByOrder(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, uint64(2), latest.ID)
	require.NotNil(t, latest.Receipt)
	assert.Equal(t, "RCP-2000", latest.Receipt.Code())
	assert.False(t, latest.Receipt.Printed)

	_, ok := latest.Receipt.Print()
	require.True(t, ok)
	require.NoError(t, s.SavePayment(ctx, latest))
	again, err := s.FindPayment(ctx, 2)
	require.NoError(t, err)
	assert.True(t, again.Receipt.Printed)

	first, err := s.FindPayment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, first.Status)
	assert.Nil(t, first.Receipt)
}

func sequences(t *testing.T, s repository.Store) {
	ctx := context.Background()
	cases := []struct {
		name  string
		next  func(context.Context) (uint64, error)
		first uint64
	}{
		{"order", s.NextOrderID, repository.FirstOrderID},
		{"payment", s.NextPaymentID, repository.FirstPaymentID},
		{"invoice", s.NextInvoiceNumber, repository.FirstInvoiceNumber},
		{"receipt", s.NextReceiptNumber, repository.FirstReceiptNumber},
	}
	for _, c := range cases {
		a, err := c.next(ctx)
		require.NoError(t, err, c.name)
		b, err := c.next(ctx)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.first, a, c.name)
		assert.Equal(t, c.first+1, b, c.name)
	}
}
