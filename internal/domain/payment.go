package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodWallet PaymentMethod = "wallet"
	MethodBank   PaymentMethod = "bank"
	MethodPayPal PaymentMethod = "paypal"
)

// PaymentStrategy executes one payment method. Implementations report
// success as a plain bool; a false result is a decline.
type PaymentStrategy interface {
	Execute(amount decimal.Decimal) bool
	Label() string
	Method() PaymentMethod
}

// NewPaymentStrategy selects a strategy by method tag.
func NewPaymentStrategy(method, credential string) (PaymentStrategy, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(method))) {
	case MethodWallet:
		return NewDigitalWallet(credential), nil
	case MethodBank:
		return NewBankDebit(credential), nil
	case MethodPayPal:
		return NewPayPal(credential), nil
	}
	return nil, ErrInvalidPaymentMethod
}

type DigitalWallet struct {
	provider string
}

func NewDigitalWallet(provider string) *DigitalWallet {
	return &DigitalWallet{provider: provider}
}

func (w *DigitalWallet) Execute(decimal.Decimal) bool { return true }
func (w *DigitalWallet) Label() string { return "Digital Wallet (" + w.provider + ")" }
func (w *DigitalWallet) Method() PaymentMethod { return MethodWallet }

// BankDebit keeps only the last four characters of the account number.
type BankDebit struct {
	last4 string
}

func NewBankDebit(account string) *BankDebit {
	if r := []rune(account); len(r) > 4 {
		account = string(r[len(r)-4:])
	}
	return &BankDebit{last4: account}
}

func (b *BankDebit) Execute(decimal.Decimal) bool { return true }
func (b *BankDebit) Label() string { return "Bank Debit (****" + b.last4 + ")" }
func (b *BankDebit) Method() PaymentMethod { return MethodBank }

type PayPal struct {
	email string
}

func NewPayPal(email string) *PayPal {
	return &PayPal{email: email}
}

func (p *PayPal) Execute(decimal.Decimal) bool { return true }
func (p *PayPal) Label() string { return "PayPal (" + p.email + ")" }
func (p *PayPal) Method() PaymentMethod { return MethodPayPal }

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentSuccess PaymentStatus = "Success"
	PaymentFailed  PaymentStatus = "Failed"
)

type Payment struct {
	ID          uint64          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderID     uint64          `json:"orderId" gorm:"not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method      PaymentMethod   `json:"method" gorm:"size:16"`
	MethodLabel string          `json:"methodLabel" gorm:"size:255"`
	Status      PaymentStatus   `json:"status" gorm:"size:16;not null"`
	CreatedAt   time.Time       `json:"createdAt"`
	Receipt     *Receipt        `json:"receipt,omitempty" gorm:"foreignKey:PaymentID"`

	strategy PaymentStrategy
}

func NewPayment(id, orderID uint64, amount decimal.Decimal, strategy PaymentStrategy, now time.Time) *Payment {
	return &Payment{
		ID:          id,
		OrderID:     orderID,
		Amount:      amount,
		Method:      strategy.Method(),
		MethodLabel: strategy.Label(),
		Status:      PaymentPending,
		CreatedAt:   now,
		strategy:    strategy,
	}
}

// Process runs the strategy once. Only a Pending payment with a strategy
// attached can be processed; anything else reports false and is left as is.
func (p *Payment) Process() bool {
	if p.Status != PaymentPending || p.strategy == nil {
		return false
	}
	if p.strategy.Execute(p.Amount) {
		p.Status = PaymentSuccess
		return true
	}
	p.Status = PaymentFailed
	return false
}

// IssueReceipt attaches a receipt to a successful payment. It returns nil for
// any other status.
func (p *Payment) IssueReceipt(number uint64, customerName string, items []LineItem, now time.Time) *Receipt {
	if p.Status != PaymentSuccess {
		return nil
	}
	p.Receipt = &Receipt{
		Number:       number,
		PaymentID:    p.ID,
		OrderID:      p.OrderID,
		CustomerName: customerName,
		Items:        items,
		Amount:       p.Amount,
		MethodLabel:  p.MethodLabel,
		IssueDate:    now,
	}
	return p.Receipt
}
