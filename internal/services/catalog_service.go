package services

import (
	"context"
	"strings"

	"shop-service/internal/domain"

	"github.com/shopspring/decimal"
)

func (s *ShopService) loadProducts(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		return s.cache.Products(ctx, s.store.ListProducts)
	}
	return s.store.ListProducts(ctx)
}

func (s *ShopService) loadProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	load := func(ctx context.Context) (*domain.Product, error) { return s.store.FindProduct(ctx, id) }
	if s.cache != nil {
		return s.cache.Product(ctx, id, load)
	}
	return load(ctx)
}

// ListProducts returns the active catalog in id order.
func (s *ShopService) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProductView, 0, len(products))
	for i := range products {
		if products[i].Active {
			views = append(views, productView(&products[i]))
		}
	}
	return views, nil
}

func (s *ShopService) GetProduct(ctx context.Context, id uint64) (*ProductView, error) {
	p, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("product %d not found", id)
	}
	v := productView(p)
	return &v, nil
}

type NewProduct struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int64           `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
}

func (n NewProduct) validate() error {
	switch {
	case strings.TrimSpace(n.SKU) == "":
		return domain.Validation("sku is required")
	case strings.TrimSpace(n.Name) == "":
		return domain.Validation("product name cannot be empty")
	case n.Price.IsNegative():
		return domain.Validation("price cannot be negative")
	case n.Stock < 0:
		return domain.Validation("stock cannot be negative")
	}
	return nil
}

func (s *ShopService) requireInventory(ctx context.Context, adminID uint64) error {
	u, err := s.requireAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !u.CanManageInventory() {
		return domain.Forbidden("inventory management not permitted")
	}
	return nil
}

func (s *ShopService) CreateProduct(ctx context.Context, adminID uint64, n NewProduct) (*ProductView, error) {
	if err := s.requireInventory(ctx, adminID); err != nil {
		return nil, err
	}
	if err := n.validate(); err != nil {
		return nil, err
	}

	s.stock.Lock()
	defer s.stock.Unlock()

	id, err := s.store.NextProductID(ctx)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:          id,
		SKU:         strings.TrimSpace(n.SKU),
		Name:        strings.TrimSpace(n.Name),
		Price:       n.Price,
		Description: n.Description,
		Stock:       n.Stock,
		Active:      true,
		ImageURL:    n.ImageURL,
		UpdatedAt:   s.now(),
	}
	if err := s.store.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	s.productChanged(ctx, p)
	v := productView(p)
	return &v, nil
}

func (s *ShopService) UpdateProduct(ctx context.Context, adminID, id uint64, patch domain.ProductPatch) (*ProductView, error) {
	return s.mutateProduct(ctx, adminID, id, func(p *domain.Product) error {
		return p.Apply(patch)
	})
}

// AdjustStock adds delta to the product's stock, clamping at zero.
func (s *ShopService) AdjustStock(ctx context.Context, adminID, id uint64, delta int64) (*ProductView, error) {
	return s.mutateProduct(ctx, adminID, id, func(p *domain.Product) error {
		p.UpdateStock(delta)
		return nil
	})
}

func (s *ShopService) mutateProduct(ctx context.Context, adminID, id uint64, fn func(*domain.Product) error) (*ProductView, error) {
	if err := s.requireInventory(ctx, adminID); err != nil {
		return nil, err
	}

	s.stock.Lock()
	defer s.stock.Unlock()

	p, err := s.store.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("product %d not found", id)
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.store.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	s.productChanged(ctx, p)
	v := productView(p)
	return &v, nil
}

func (s *ShopService) productChanged(ctx context.Context, p *domain.Product) {
	s.invalidate(ctx, p.ID)
	s.publish(ctx, domain.EventProductUpdated, domain.ProductUpdatedEvent{
		ProductID: p.ID,
		Stock:     p.Stock,
		Price:     p.Price,
		Active:    p.Active,
	})
}
