package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys for published events.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventPaymentCompleted   = "payment.completed"
	EventPaymentFailed      = "payment.failed"
	EventProductUpdated     = "product.updated"
)

type OrderPlacedEvent struct {
	OrderID    uint64          `json:"orderId"`
	CustomerID uint64          `json:"customerId"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int64           `json:"itemCount"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type PaymentEvent struct {
	PaymentID     uint64          `json:"paymentId"`
	OrderID       uint64          `json:"orderId"`
	CustomerID    uint64          `json:"customerId"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
	InvoiceNumber string          `json:"invoiceNumber"`
	ReceiptNumber string          `json:"receiptNumber,omitempty"`
}

type OrderStatusChangedEvent struct {
	OrderID    uint64      `json:"orderId"`
	CustomerID uint64      `json:"customerId"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	ChangedAt  time.Time   `json:"changedAt"`
}

type ProductUpdatedEvent struct {
	ProductID uint64          `json:"productId"`
	Stock     int64           `json:"stock"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
}

// Recipient returns the customer an event concerns, or 0 for events that are
// only of interest to admins.
func Recipient(evt any) uint64 {
	switch e := evt.(type) {
	case OrderPlacedEvent:
		return e.CustomerID
	case PaymentEvent:
		return e.CustomerID
	case OrderStatusChangedEvent:
		return e.CustomerID
	}
	return 0
}
