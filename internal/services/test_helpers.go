package services

import (
	"time"

	"shop-service/internal/domain"

	"github.com/shopspring/decimal"
)

func CreateMockProduct(id uint64, name string, price string, stock int64) *domain.Product {
	return &domain.Product{
		ID:     id,
		SKU:    "SKU" + name,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
}

func CreateMockCustomer(id uint64, email string) *domain.User {
	return domain.NewCustomer(id, email, TestPassword, "Customer "+email, "1 Test Street")
}

func CreateMockAdmin(id uint64) *domain.User {
	return domain.NewAdmin(id, "admin@example.com", TestPassword)
}

// DecliningStrategy rejects every payment.
type DecliningStrategy struct{}

func (DecliningStrategy) Execute(decimal.Decimal) bool { return false }
func (DecliningStrategy) Label() string { return "Declining Card" }
func (DecliningStrategy) Method() domain.PaymentMethod { return "declining" }

// DecliningPayments is a PaymentFactory whose strategies always decline.
func DecliningPayments(method, credential string) (domain.PaymentStrategy, error) {
	if _, err := domain.NewPaymentStrategy(method, credential); err != nil {
		return nil, err
	}
	return DecliningStrategy{}, nil
}

const (
	TestCustomerID = uint64(1)
	TestOtherID    = uint64(2)
	TestAdminID    = uint64(3)
	TestProductID  = uint64(1)
	TestPassword   = "secret"
)

var TestNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
