package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id uint64, name, price string, stock int64) *Product {
	return &Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: stock, Active: true}
}

func TestCart_Add(t *testing.T) {
	tests := []struct {
		name          string
		product       *Product
		adds          []int64
		expectedError error
		expectedQty   int64
	}{
		{name: "new line", product: product(1, "Chips", "2.99", 5), adds: []int64{2}, expectedQty: 2},
		{name: "merges into existing line", product: product(1, "Chips", "2.99", 5), adds: []int64{2, 3}, expectedQty: 5},
		{name: "merge rechecks stock", product: product(1, "Chips", "2.99", 5), adds: []int64{3, 3}, expectedError: ErrValidation, expectedQty: 3},
		{name: "merge cannot overflow quantity", product: product(1, "Chips", "2.99", 5), adds: []int64{1, math.MaxInt64}, expectedError: ErrValidation, expectedQty: 1},
		{name: "out of stock", product: product(1, "Chips", "2.99", 0), adds: []int64{1}, expectedError: ErrValidation},
		{name: "negative quantity", product: product(1, "Chips", "2.99", 5), adds: []int64{-1}, expectedError: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart(1)
			var err error
			for _, q := range tt.adds {
				if err = c.Add(tt.product, q); err != nil {
					break
				}
			}
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedQty, c.ItemCount())
			assert.LessOrEqual(t, len(c.Lines), 1, "one line per product")
		})
	}
}

func TestCart_AddInactive(t *testing.T) {
	p := product(1, "Chips", "2.99", 5)
	p.Active = false
	err := NewCart(1).Add(p, 1)
	assert.EqualError(t, err, "Chips is not available")
}

func TestCart_TotalsUseCapturedPrice(t *testing.T) {
	c := NewCart(1)
	chips := product(1, "Chips", "2.99", 50)
	require.NoError(t, c.Add(chips, 2))
	require.NoError(t, c.Add(product(2, "Water", "1.50", 10), 3))

	chips.Price = decimal.RequireFromString("9.99")

	assert.Equal(t, "10.48", c.Total().StringFixed(2))
	assert.Equal(t, int64(5), c.ItemCount())
	assert.Equal(t, 0, c.Lines[0].Position)
	assert.Equal(t, 1, c.Lines[1].Position)
}

func TestCart_UpdateQuantity(t *testing.T) {
	p := product(1, "Chips", "2.99", 5)
	c := NewCart(1)
	require.NoError(t, c.Add(p, 1))

	require.NoError(t, c.UpdateQuantity(p, 5))
	assert.Equal(t, int64(5), c.ItemCount())

	err := c.UpdateQuantity(p, 6)
	assert.EqualError(t, err, "Chips has exceeded limited stock (Instock: 5)")

	require.NoError(t, c.UpdateQuantity(p, 0))
	assert.True(t, c.IsEmpty())

	assert.ErrorIs(t, c.UpdateQuantity(p, 2), ErrNotFound)
	assert.ErrorIs(t, c.Remove(p.ID), ErrNotFound)
}

func TestCart_Snapshot(t *testing.T) {
	c := NewCart(1)
	require.NoError(t, c.Add(product(1, "Chips", "2.99", 5), 3))
	require.NoError(t, c.Add(product(2, "Water", "1.50", 5), 1))
	require.NoError(t, c.Add(product(3, "Gum", "0.50", 5), 1))

	live := map[uint64]*Product{
		1: product(1, "Chips", "2.99", 2),
		2: product(2, "Water", "1.50", 5),
	}
	view := c.Snapshot(func(id uint64) *Product { return live[id] })

	assert.False(t, view.CanCheckout)
	require.Len(t, view.Items, 3)
	assert.Equal(t, ExceedsStock, view.Items[0].StockIssue)
	assert.True(t, view.Items[1].StockOK)
	assert.Equal(t, OutOfStock, view.Items[2].StockIssue, "a deleted product counts as out of stock")
	assert.Equal(t, "Gum is out of stock", view.Items[2].StockMessage)
	assert.Equal(t, int64(3), c.Lines[0].Quantity)
}

func TestCart_Clear(t *testing.T) {
	c := NewCart(1)
	require.NoError(t, c.Add(product(1, "Chips", "2.99", 5), 1))
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Total().IsZero())
}
