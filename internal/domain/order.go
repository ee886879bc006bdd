package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPlaced     OrderStatus = "Placed"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range orderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", Validation("invalid order status %q", s)
}

// OrderLine is an immutable snapshot of a cart line taken at checkout.
type OrderLine struct {
	ID          uint64          `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID     uint64          `json:"-" gorm:"index;not null"`
	ProductID   uint64          `json:"productId" gorm:"not null"`
	ProductName string          `json:"productName" gorm:"size:255"`
	SKU         string          `json:"sku" gorm:"size:64"`
	ImageURL    string          `json:"imageUrl" gorm:"size:512"`
	Quantity    int64           `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
}

func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Item is the line snapshot printed on invoices and receipts.
func (l OrderLine) Item() LineItem {
	return LineItem{
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		SKU:         l.SKU,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		LineTotal:   l.LineTotal(),
		ImageURL:    l.ImageURL,
	}
}

type Order struct {
	ID         uint64          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CustomerID uint64          `json:"customerId" gorm:"not null;index"`
	CreatedAt  time.Time       `json:"createdAt"`
	Lines      []OrderLine     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Status     OrderStatus     `json:"status" gorm:"size:16;not null"`
	Total      decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
}

// FreezeLines copies cart lines into order lines.
func FreezeLines(lines []CartLine) []OrderLine {
	out := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLine{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			SKU:         l.SKU,
			ImageURL:    l.ImageURL,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return out
}

// NewOrder builds a Placed order. The total is computed once here and never
// recomputed.
func NewOrder(id, customerID uint64, lines []OrderLine, now time.Time) *Order {
	o := &Order{
		ID:         id,
		CustomerID: customerID,
		CreatedAt:  now,
		Lines:      lines,
		Status:     StatusPlaced,
		Total:      decimal.Zero,
	}
	for i := range o.Lines {
		o.Lines[i].OrderID = id
		o.Total = o.Total.Add(o.Lines[i].LineTotal())
	}
	return o
}

// UpdateStatus accepts any of the five known statuses; transitions between
// them are not restricted.
func (o *Order) UpdateStatus(s OrderStatus) error {
	if _, err := ParseOrderStatus(string(s)); err != nil {
		return err
	}
	o.Status = s
	return nil
}

func (o *Order) Items() []LineItem {
	items := make([]LineItem, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, l.Item())
	}
	return items
}

func (o *Order) OwnedBy(customerID uint64) bool { return o.CustomerID == customerID }
