package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence is one named counter row; Value is the last value handed out.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:32"`
	Value uint64 `gorm:"not null"`
}

// Models lists every table the store needs, in creation order.
func Models() []any {
	return []any{
		&domain.Product{},
		&domain.User{},
		&domain.Cart{},
		&domain.CartLine{},
		&domain.Order{},
		&domain.OrderLine{},
		&domain.Payment{},
		&domain.Receipt{},
		&domain.Invoice{},
		&Sequence{},
	}
}

// next locks the named row, increments it and returns the new value. A
// missing row is created holding start.
func (r *store) next(ctx context.Context, name string, start func(tx *gorm.DB) (uint64, error)) (uint64, error) {
	var seq Sequence
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			v, err := start(tx)
			if err != nil {
				return err
			}
			seq = Sequence{Name: name, Value: v}
			return tx.Create(&seq).Error
		}
		if err != nil {
			return err
		}
		seq.Value++
		return tx.Model(&Sequence{}).Where("name = ?", name).Update("value", seq.Value).Error
	})
	if err != nil {
		return 0, fmt.Errorf("sequence %s: %w", name, err)
	}
	return seq.Value, nil
}

func fixed(v uint64) func(*gorm.DB) (uint64, error) {
	return func(*gorm.DB) (uint64, error) { return v, nil }
}

// afterMax starts a sequence past the highest id already in the table, so
// seeded rows with explicit ids are never reused.
func afterMax(model any) func(*gorm.DB) (uint64, error) {
	return func(tx *gorm.DB) (uint64, error) {
		var top uint64
		if err := tx.Model(model).Select("COALESCE(MAX(id), 0)").Scan(&top).Error; err != nil {
			return 0, err
		}
		return top + 1, nil
	}
}

func (r *store) NextProductID(ctx context.Context) (uint64, error) {
	return r.next(ctx, "product", afterMax(&domain.Product{}))
}

func (r *store) NextUserID(ctx context.Context) (uint64, error) {
	return r.next(ctx, "user", afterMax(&domain.User{}))
}

func (r *store) NextOrderID(ctx context.Context) (uint64, error) {
	return r.next(ctx, "order", fixed(repository.FirstOrderID))
}

func (r *store) NextPaymentID(ctx context.Context) (uint64, error) {
	return r.next(ctx, "payment", fixed(repository.FirstPaymentID))
}

func (r *store) NextInvoiceNumber(ctx context.Context) (uint64, error) {
	return r.next(ctx, "invoice", fixed(repository.FirstInvoiceNumber))
}

func (r *store) NextReceiptNumber(ctx context.Context) (uint64, error) {
	return r.next(ctx, "receipt", fixed(repository.FirstReceiptNumber))
}
