package repository

import (
	"context"

	"shop-service/internal/domain"
)

// Finders return (nil, nil) when the record does not exist.

type ProductRepository interface {
	SaveProduct(ctx context.Context, p *domain.Product) error
	FindProduct(ctx context.Context, id uint64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type UserRepository interface {
	SaveUser(ctx context.Context, u *domain.User) error
	FindUser(ctx context.Context, id uint64) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type CartRepository interface {
	SaveCart(ctx context.Context, c *domain.Cart) error
	FindCart(ctx context.Context, customerID uint64) (*domain.Cart, error)
}

type OrderRepository interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	FindOrder(ctx context.Context, id uint64) (*domain.Order, error)
	FindOrdersByCustomer(ctx context.Context, customerID uint64) ([]domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

type PaymentRepository interface {
	SavePayment(ctx context.Context, p *domain.Payment) error
	FindPayment(ctx context.Context, id uint64) (*domain.Payment, error)
	// FindPaymentByOrder returns the latest payment recorded for the order.
	FindPaymentByOrder(ctx context.Context, orderID uint64) (*domain.Payment, error)
}

type InvoiceRepository interface {
	SaveInvoice(ctx context.Context, i *domain.Invoice) error
	FindInvoiceByOrder(ctx context.Context, orderID uint64) (*domain.Invoice, error)
	ListInvoices(ctx context.Context) ([]domain.Invoice, error)
}

// Sequences hands out identifiers. Each sequence is monotonic and never
// reuses a value.
type Sequences interface {
	NextProductID(ctx context.Context) (uint64, error)
	NextUserID(ctx context.Context) (uint64, error)
	NextOrderID(ctx context.Context) (uint64, error)
	NextPaymentID(ctx context.Context) (uint64, error)
	NextInvoiceNumber(ctx context.Context) (uint64, error)
	NextReceiptNumber(ctx context.Context) (uint64, error)
}

// Starting values of each sequence.
const (
	FirstOrderID       uint64 = 1
	FirstPaymentID     uint64 = 1
	FirstInvoiceNumber uint64 = 1000
	FirstReceiptNumber uint64 = 2000
)

// Store is the system of record for every entity.
type Store interface {
	ProductRepository
	UserRepository
	CartRepository
	OrderRepository
	PaymentRepository
	InvoiceRepository
	Sequences
}
