package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is proof of a successful payment. It can be printed once.
type Receipt struct {
	Number       uint64          `json:"number" gorm:"primaryKey;autoIncrement:false"`
	PaymentID    uint64          `json:"paymentId" gorm:"uniqueIndex;not null"`
	OrderID      uint64          `json:"orderId" gorm:"index;not null"`
	CustomerName string          `json:"customerName" gorm:"size:255"`
	Items        []LineItem      `json:"items" gorm:"serializer:json"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	MethodLabel  string          `json:"methodLabel" gorm:"size:255"`
	IssueDate    time.Time       `json:"issueDate"`
	Printed      bool            `json:"printed"`
}

func (r *Receipt) Code() string { return fmt.Sprintf("RCP-%d", r.Number) }

type ReceiptDocument struct {
	ReceiptNumber string          `json:"receiptNumber"`
	PaymentID     uint64          `json:"paymentId"`
	OrderID       uint64          `json:"orderId"`
	CustomerName  string          `json:"customerName"`
	Items         []LineItem      `json:"items"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentDate   string          `json:"paymentDate"`
	Status        string          `json:"status"`
}

func (r *Receipt) Render() ReceiptDocument {
	return ReceiptDocument{
		ReceiptNumber: r.Code(),
		PaymentID:     r.PaymentID,
		OrderID:       r.OrderID,
		CustomerName:  r.CustomerName,
		Items:         r.Items,
		AmountPaid:    r.Amount,
		PaymentMethod: r.MethodLabel,
		PaymentDate:   r.IssueDate.Format(dateTimeLayout),
		Status:        "Paid",
	}
}

// Print formats the receipt and marks it printed. A receipt that was already
// printed yields ("", false) without formatting anything.
func (r *Receipt) Print() (string, bool) {
	if r.Printed {
		return "", false
	}
	r.Printed = true

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "           PAYMENT RECEIPT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Receipt No: %s\n", r.Code())
	fmt.Fprintf(&b, "Date: %s\n", r.IssueDate.Format(dateTimeLayout))
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Order ID: #%d\n", r.OrderID)
	fmt.Fprintf(&b, "Customer: %s\n", r.CustomerName)
	fmt.Fprintln(&b)
	if len(r.Items) > 0 {
		fmt.Fprintln(&b, "Items:")
		writeItems(&b, r.Items)
		fmt.Fprintln(&b)
	}
	fmt.Fprintf(&b, "Amount Paid: %s\n", money(r.Amount))
	fmt.Fprintf(&b, "Payment Method: %s\n", r.MethodLabel)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Status: PAID")
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Thank you for your purchase!")
	fmt.Fprintln(&b, rule)
	return b.String(), true
}
