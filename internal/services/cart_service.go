package services

import (
	"context"

	"shop-service/internal/domain"
)

// cart returns the customer's cart, creating an empty one in memory if none
// has been saved yet.
func (s *ShopService) cart(ctx context.Context, customerID uint64) (*domain.Cart, error) {
	c, err := s.store.FindCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = domain.NewCart(customerID)
	}
	return c, nil
}

// snapshot renders c against stock read straight from the store.
func (s *ShopService) snapshot(ctx context.Context, c *domain.Cart) (*domain.CartView, error) {
	live := make(map[uint64]*domain.Product, len(c.Lines))
	for _, l := range c.Lines {
		p, err := s.store.FindProduct(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		live[l.ProductID] = p
	}
	view := c.Snapshot(func(id uint64) *domain.Product { return live[id] })
	return &view, nil
}

func (s *ShopService) requireProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := s.store.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("product %d not found", id)
	}
	return p, nil
}

func (s *ShopService) CartView(ctx context.Context, customerID uint64) (*domain.CartView, error) {
	if _, err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	c, err := s.cart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, c)
}

func (s *ShopService) CartAdd(ctx context.Context, customerID, productID uint64, quantity int64) (*domain.CartView, error) {
	return s.mutateCart(ctx, customerID, func(c *domain.Cart) error {
		if quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		p, err := s.requireProduct(ctx, productID)
		if err != nil {
			return err
		}
		return c.Add(p, quantity)
	})
}

// CartUpdate sets a line's quantity; zero or less removes the line.
func (s *ShopService) CartUpdate(ctx context.Context, customerID, productID uint64, quantity int64) (*domain.CartView, error) {
	return s.mutateCart(ctx, customerID, func(c *domain.Cart) error {
		if quantity <= 0 {
			return c.Remove(productID)
		}
		p, err := s.requireProduct(ctx, productID)
		if err != nil {
			return err
		}
		return c.UpdateQuantity(p, quantity)
	})
}

func (s *ShopService) CartRemove(ctx context.Context, customerID, productID uint64) (*domain.CartView, error) {
	return s.mutateCart(ctx, customerID, func(c *domain.Cart) error {
		return c.Remove(productID)
	})
}

func (s *ShopService) mutateCart(ctx context.Context, customerID uint64, fn func(*domain.Cart) error) (*domain.CartView, error) {
	if _, err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	unlock := s.customers.Lock(customerID)
	defer unlock()

	c, err := s.cart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()
	if err := s.store.SaveCart(ctx, c); err != nil {
		return nil, err
	}
	return s.snapshot(ctx, c)
}
