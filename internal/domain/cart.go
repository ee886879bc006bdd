package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartLine struct {
	ID          uint64          `json:"-" gorm:"primaryKey;autoIncrement"`
	CustomerID  uint64          `json:"-" gorm:"index;not null"`
	Position    int             `json:"-" gorm:"not null"`
	ProductID   uint64          `json:"productId" gorm:"not null"`
	ProductName string          `json:"productName" gorm:"size:255"`
	SKU         string          `json:"sku" gorm:"size:64"`
	ImageURL    string          `json:"imageUrl" gorm:"size:512"`
	Quantity    int64           `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
}

// LineTotal uses the price captured when the line was added.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Cart keeps lines in insertion order with at most one line per product.
type Cart struct {
	CustomerID uint64     `json:"customerId" gorm:"primaryKey;autoIncrement:false"`
	Lines      []CartLine `json:"lines" gorm:"foreignKey:CustomerID;references:CustomerID;constraint:OnDelete:CASCADE"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func NewCart(customerID uint64) *Cart {
	return &Cart{CustomerID: customerID}
}

func (c *Cart) find(productID uint64) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts quantity units of p into the cart, merging with an existing line.
// The merged quantity is checked against p's current stock.
func (c *Cart) Add(p *Product, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !p.IsAvailable() {
		return Validation("%s is not available", p.Name)
	}

	i := c.find(p.ID)
	var existing int64
	if i >= 0 {
		existing = c.Lines[i].Quantity
	}
	// Compared against the remaining headroom so existing+quantity cannot overflow.
	if quantity > p.Stock-existing {
		return Validation("%s", exceedsStock(p.Name, p.Stock))
	}
	requested := existing + quantity

	if i >= 0 {
		c.Lines[i].Quantity = requested
		return nil
	}
	c.Lines = append(c.Lines, CartLine{
		CustomerID:  c.CustomerID,
		ProductID:   p.ID,
		ProductName: p.Name,
		SKU:         p.SKU,
		ImageURL:    p.ImageURL,
		Quantity:    quantity,
		UnitPrice:   p.Price,
	})
	c.renumber()
	return nil
}

// UpdateQuantity sets the quantity of p's line. A quantity of zero or less
// removes the line.
func (c *Cart) UpdateQuantity(p *Product, quantity int64) error {
	if quantity <= 0 {
		return c.Remove(p.ID)
	}
	i := c.find(p.ID)
	if i < 0 {
		return NotFound("%s is not in the cart", p.Name)
	}
	if quantity > p.Stock {
		_, msg := CheckStock(p.Name, quantity, p.Stock)
		return Validation("%s", msg)
	}
	c.Lines[i].Quantity = quantity
	return nil
}

func (c *Cart) Remove(productID uint64) error {
	i := c.find(productID)
	if i < 0 {
		return NotFound("product %d is not in the cart", productID)
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	c.renumber()
	return nil
}

func (c *Cart) renumber() {
	for i := range c.Lines {
		c.Lines[i].Position = i
	}
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (c *Cart) ItemCount() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

func (c *Cart) Clear() { c.Lines = nil }

type CartLineView struct {
	ProductID    uint64          `json:"productId"`
	ProductName  string          `json:"productName"`
	SKU          string          `json:"sku"`
	ImageURL     string          `json:"imageUrl"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
	CurrentStock int64           `json:"currentStock"`
	StockOK      bool            `json:"stockOk"`
	StockIssue   StockStatus     `json:"stockIssue,omitempty"`
	StockMessage string          `json:"stockMessage"`
}

type CartView struct {
	CustomerID  uint64          `json:"customerId"`
	Items       []CartLineView  `json:"items"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int64           `json:"itemCount"`
	CanCheckout bool            `json:"canCheckout"`
}

// Snapshot renders the cart against live stock without mutating it. live
// returns the current product or nil if it no longer exists; a missing
// product counts as out of stock.
func (c *Cart) Snapshot(live func(productID uint64) *Product) CartView {
	view := CartView{
		CustomerID:  c.CustomerID,
		Items:       make([]CartLineView, 0, len(c.Lines)),
		Total:       c.Total(),
		ItemCount:   c.ItemCount(),
		CanCheckout: true,
	}
	for _, l := range c.Lines {
		var stock int64
		if p := live(l.ProductID); p != nil {
			stock = p.Stock
		}
		status, msg := CheckStock(l.ProductName, l.Quantity, stock)
		line := CartLineView{
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			SKU:          l.SKU,
			ImageURL:     l.ImageURL,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineTotal:    l.LineTotal(),
			CurrentStock: stock,
			StockOK:      status == StockOK,
			StockMessage: msg,
		}
		if status != StockOK {
			line.StockIssue = status
			view.CanCheckout = false
		}
		view.Items = append(view.Items, line)
	}
	return view
}
