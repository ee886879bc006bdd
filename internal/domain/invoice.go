package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	rule           = "====================================="
)

// LineItem is the per-line snapshot carried by invoices and receipts.
type LineItem struct {
	ProductID   uint64          `json:"productId"`
	ProductName string          `json:"productName"`
	SKU         string          `json:"sku"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	ImageURL    string          `json:"imageUrl"`
}

type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "Unpaid"
	InvoicePaid   InvoiceStatus = "Paid"
)

type Invoice struct {
	Number       uint64          `json:"number" gorm:"primaryKey;autoIncrement:false"`
	OrderID      uint64          `json:"orderId" gorm:"uniqueIndex;not null"`
	CustomerName string          `json:"customerName" gorm:"size:255"`
	Items        []LineItem      `json:"items" gorm:"serializer:json"`
	Total        decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	IssueDate    time.Time       `json:"issueDate"`
	DueDate      time.Time       `json:"dueDate"`
	Status       InvoiceStatus   `json:"status" gorm:"size:16;not null"`
}

// NewInvoice issues an Unpaid invoice for o, due dueIn after now.
func NewInvoice(number uint64, o *Order, customerName string, now time.Time, dueIn time.Duration) *Invoice {
	return &Invoice{
		Number:       number,
		OrderID:      o.ID,
		CustomerName: customerName,
		Items:        o.Items(),
		Total:        o.Total,
		IssueDate:    now,
		DueDate:      now.Add(dueIn),
		Status:       InvoiceUnpaid,
	}
}

// MarkPaid is one way; there is no transition back to Unpaid.
func (i *Invoice) MarkPaid() { i.Status = InvoicePaid }

func (i *Invoice) IsPaid() bool { return i.Status == InvoicePaid }

func (i *Invoice) Code() string { return fmt.Sprintf("INV-%d", i.Number) }

type InvoiceDocument struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	OrderID       uint64          `json:"orderId"`
	CustomerName  string          `json:"customerName"`
	IssueDate     string          `json:"issueDate"`
	DueDate       string          `json:"dueDate"`
	Items         []LineItem      `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        InvoiceStatus   `json:"status"`
}

func (i *Invoice) Render() InvoiceDocument {
	return InvoiceDocument{
		InvoiceNumber: i.Code(),
		OrderID:       i.OrderID,
		CustomerName:  i.CustomerName,
		IssueDate:     i.IssueDate.Format(dateLayout),
		DueDate:       i.DueDate.Format(dateLayout),
		Items:         i.Items,
		TotalAmount:   i.Total,
		Status:        i.Status,
	}
}

// Text formats the invoice as a printable block.
func (i *Invoice) Text() string {
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "               INVOICE")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Invoice No: %s\n", i.Code())
	fmt.Fprintf(&b, "Issue Date: %s\n", i.IssueDate.Format(dateLayout))
	fmt.Fprintf(&b, "Due Date: %s\n", i.DueDate.Format(dateLayout))
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Order ID: #%d\n", i.OrderID)
	fmt.Fprintf(&b, "Customer: %s\n", i.CustomerName)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Items:")
	writeItems(&b, i.Items)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Total Amount: %s\n", money(i.Total))
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Status: %s\n", i.Status)
	fmt.Fprintln(&b, rule)
	return b.String()
}

func writeItems(b *strings.Builder, items []LineItem) {
	for _, it := range items {
		fmt.Fprintf(b, "  %s x%d @ %s = %s\n", it.ProductName, it.Quantity, money(it.UnitPrice), money(it.LineTotal))
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
