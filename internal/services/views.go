package services

import (
	"shop-service/internal/domain"

	"github.com/shopspring/decimal"
)

type ProductView struct {
	domain.Product
	Available bool `json:"available"`
}

func productView(p *domain.Product) ProductView {
	return ProductView{Product: *p, Available: p.IsAvailable()}
}

type OrderView struct {
	ID         uint64             `json:"orderId"`
	CustomerID uint64             `json:"customerId"`
	OrderDate  string             `json:"orderDate"`
	Status     domain.OrderStatus `json:"status"`
	Total      decimal.Decimal    `json:"total"`
	Items      []domain.LineItem  `json:"items"`
}

func orderView(o *domain.Order) OrderView {
	return OrderView{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		OrderDate:  o.CreatedAt.Format(timeLayout),
		Status:     o.Status,
		Total:      o.Total,
		Items:      o.Items(),
	}
}

type PaymentView struct {
	ID          uint64                  `json:"paymentId"`
	OrderID     uint64                  `json:"orderId"`
	Amount      decimal.Decimal         `json:"amount"`
	Method      string                  `json:"method"`
	Status      domain.PaymentStatus    `json:"status"`
	PaymentDate string                  `json:"paymentDate"`
	Receipt     *domain.ReceiptDocument `json:"receipt,omitempty"`
}

func paymentView(p *domain.Payment) PaymentView {
	v := PaymentView{
		ID:          p.ID,
		OrderID:     p.OrderID,
		Amount:      p.Amount,
		Method:      p.MethodLabel,
		Status:      p.Status,
		PaymentDate: p.CreatedAt.Format(timeLayout),
	}
	if p.Receipt != nil {
		doc := p.Receipt.Render()
		v.Receipt = &doc
	}
	return v
}

type CheckoutResult struct {
	Order   OrderView              `json:"order"`
	Payment PaymentView            `json:"payment"`
	Invoice domain.InvoiceDocument `json:"invoice"`
}
