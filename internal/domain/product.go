package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint64          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SKU         string          `json:"sku" gorm:"size:64;uniqueIndex"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Stock       int64           `json:"stock" gorm:"not null"`
	Active      bool            `json:"active" gorm:"not null"`
	ImageURL    string          `json:"imageUrl" gorm:"size:512"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Product) IsAvailable() bool {
	return p.Active && p.Stock > 0
}

// UpdateStock adds delta (negative to debit). Stock never drops below zero
// and saturates at math.MaxInt64.
func (p *Product) UpdateStock(delta int64) {
	switch {
	case delta > 0 && p.Stock > math.MaxInt64-delta:
		p.Stock = math.MaxInt64
	case p.Stock+delta < 0:
		p.Stock = 0
	default:
		p.Stock += delta
	}
}

// ProductPatch holds the admin-editable fields; nil means unchanged.
type ProductPatch struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Stock       *int64           `json:"stock"`
	Active      *bool            `json:"active"`
	ImageURL    *string          `json:"imageUrl"`
}

// Apply validates the whole patch before touching p.
func (p *Product) Apply(patch ProductPatch) error {
	if patch.Name != nil && *patch.Name == "" {
		return Validation("product name cannot be empty")
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return Validation("price cannot be negative")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return Validation("stock cannot be negative")
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	return nil
}

// StockStatus is the result of checking a requested quantity against live stock.
type StockStatus string

const (
	StockOK      StockStatus = "ok"
	OutOfStock   StockStatus = "out_of_stock"
	ExceedsStock StockStatus = "exceeds_stock"
)

// CheckStock returns the stock status for quantity units of a product named
// name with stock units on hand, plus a message for the user ("" when ok).
func CheckStock(name string, quantity, stock int64) (StockStatus, string) {
	switch {
	case stock <= 0:
		return OutOfStock, name + " is out of stock"
	case quantity > stock:
		return ExceedsStock, exceedsStock(name, stock)
	default:
		return StockOK, ""
	}
}

func exceedsStock(name string, stock int64) string {
	return fmt.Sprintf("%s has exceeded limited stock (Instock: %d)", name, stock)
}
