package gormrepo

import (
	"context"
	"errors"
	"log"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type store struct {
	db *gorm.DB
}

// NewStore returns a Store backed by db. The schema must already be migrated
// (see database.Migrate).
func NewStore(db *gorm.DB) repository.Store {
	return &store{db: db}
}

func (r *store) upsert(ctx context.Context, value any) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(value).Error
}

// first loads a single row into dest and maps a missing row to (false, nil).
func first(q *gorm.DB, dest any) (bool, error) {
	if err := q.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *store) SaveProduct(ctx context.Context, p *domain.Product) error {
	if err := r.upsert(ctx, p); err != nil {
		log.Printf("SaveProduct error: %v", err)
		return err
	}
	return nil
}

func (r *store) FindProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	ok, err := first(r.db.WithContext(ctx).Where("id = ?", id), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (r *store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		log.Printf("ListProducts error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *store) SaveUser(ctx context.Context, u *domain.User) error {
	return r.upsert(ctx, u)
}

func (r *store) FindUser(ctx context.Context, id uint64) (*domain.User, error) {
	var u domain.User
	ok, err := first(r.db.WithContext(ctx).Where("id = ?", id), &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (r *store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	ok, err := first(r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email), &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

// SaveCart replaces the stored lines with c's lines.
func (r *store) SaveCart(ctx context.Context, c *domain.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(c).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", c.CustomerID).Delete(&domain.CartLine{}).Error; err != nil {
			return err
		}
		if len(c.Lines) == 0 {
			return nil
		}
		lines := make([]domain.CartLine, len(c.Lines))
		for i, l := range c.Lines {
			l.ID = 0
			l.CustomerID = c.CustomerID
			l.Position = i
			lines[i] = l
		}
		return tx.Create(&lines).Error
	})
}

func (r *store) FindCart(ctx context.Context, customerID uint64) (*domain.Cart, error) {
	var c domain.Cart
	q := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("customer_id = ?", customerID)
	ok, err := first(q, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (r *store) SaveOrder(ctx context.Context, o *domain.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(o).Error; err != nil {
			return err
		}
		// Lines are written once, with the order that owns them.
		var n int64
		if err := tx.Model(&domain.OrderLine{}).Where("order_id = ?", o.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 || len(o.Lines) == 0 {
			return nil
		}
		for i := range o.Lines {
			o.Lines[i].OrderID = o.ID
		}
		return tx.Create(&o.Lines).Error
	})
	if err != nil {
		log.Printf("SaveOrder error: %v", err)
		return err
	}
	return nil
}

func (r *store) orders(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func (r *store) FindOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	ok, err := first(r.orders(ctx).Where("id = ?", id), &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}

func (r *store) FindOrdersByCustomer(ctx context.Context, customerID uint64) ([]domain.Order, error) {
	out := []domain.Order{}
	if err := r.orders(ctx).Where("customer_id = ?", customerID).Order("id").Find(&out).Error; err != nil {
		log.Printf("FindOrdersByCustomer error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	out := []domain.Order{}
	if err := r.orders(ctx).Order("id").Find(&out).Error; err != nil {
		log.Printf("ListOrders error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *store) SavePayment(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error; err != nil {
			return err
		}
		if p.Receipt == nil {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(p.Receipt).Error
	})
}

func (r *store) FindPayment(ctx context.Context, id uint64) (*domain.Payment, error) {
	var p domain.Payment
	ok, err := first(r.db.WithContext(ctx).Preload("Receipt").Where("id = ?", id), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (r *store) FindPaymentByOrder(ctx context.Context, orderID uint64) (*domain.Payment, error) {
	var p domain.Payment
	q := r.db.WithContext(ctx).Preload("Receipt").Where("order_id = ?", orderID).Order("id DESC")
	ok, err := first(q, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (r *store) SaveInvoice(ctx context.Context, i *domain.Invoice) error {
	return r.upsert(ctx, i)
}

func (r *store) FindInvoiceByOrder(ctx context.Context, orderID uint64) (*domain.Invoice, error) {
	var i domain.Invoice
	ok, err := first(r.db.WithContext(ctx).Where("order_id = ?", orderID), &i)
	if err != nil || !ok {
		return nil, err
	}
	return &i, nil
}

func (r *store) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	out := []domain.Invoice{}
	if err := r.db.WithContext(ctx).Order("number").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
