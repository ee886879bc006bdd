package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_UpdateStock(t *testing.T) {
	tests := []struct {
		name     string
		stock    int64
		delta    int64
		expected int64
	}{
		{"debit", 5, -3, 2},
		{"credit", 5, 4, 9},
		{"clamps at zero", 1, -5, 0},
		{"saturates at max", 5, math.MaxInt64, math.MaxInt64},
		{"large debit", 5, math.MinInt64, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Stock: tt.stock, Active: true}
			p.UpdateStock(tt.delta)
			assert.Equal(t, tt.expected, p.Stock)
			assert.Equal(t, tt.expected > 0, p.IsAvailable())
		})
	}
}

func TestCheckStock(t *testing.T) {
	tests := []struct {
		quantity, stock int64
		status          StockStatus
		message         string
	}{
		{1, 0, OutOfStock, "Chips is out of stock"},
		{6, 5, ExceedsStock, "Chips has exceeded limited stock (Instock: 5)"},
		{5, 5, StockOK, ""},
	}
	for _, tt := range tests {
		status, msg := CheckStock("Chips", tt.quantity, tt.stock)
		assert.Equal(t, tt.status, status)
		assert.Equal(t, tt.message, msg)
	}
}

func TestProduct_Apply(t *testing.T) {
	p := &Product{Name: "Chips", Price: decimal.RequireFromString("2.99"), Stock: 5, Active: true}

	neg := int64(-1)
	err := p.Apply(ProductPatch{Stock: &neg})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int64(5), p.Stock, "rejected patch leaves the product untouched")

	name, price, inactive := "Hot Chips", decimal.RequireFromString("3.49"), false
	require.NoError(t, p.Apply(ProductPatch{Name: &name, Price: &price, Active: &inactive}))
	assert.Equal(t, "Hot Chips", p.Name)
	assert.Equal(t, "3.49", p.Price.StringFixed(2))
	assert.False(t, p.IsAvailable())
}
