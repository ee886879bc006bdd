package services

import (
	"context"
	"log"
	"sync"
	"time"

	"shop-service/internal/domain"
	"shop-service/internal/repository"
)

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

// ProductCache serves read-only product views. Stock checks bypass it.
type ProductCache interface {
	Product(ctx context.Context, id uint64, load func(context.Context) (*domain.Product, error)) (*domain.Product, error)
	Products(ctx context.Context, load func(context.Context) ([]domain.Product, error)) ([]domain.Product, error)
	Invalidate(ctx context.Context, ids ...uint64)
}

type CheckoutObserver interface {
	ObserveCheckout(outcome string)
}

// PaymentFactory turns a method tag and credential into a strategy.
type PaymentFactory func(method, credential string) (domain.PaymentStrategy, error)

type Options struct {
	// ReleaseStockOnFailure restores debited stock and cancels the order when
	// payment is declined. Off by default: a declined checkout keeps its
	// order and stock debit.
	ReleaseStockOnFailure bool
	// InvoiceDue is added to the issue date to get the due date.
	InvoiceDue time.Duration
}

type ShopService struct {
	store     repository.Store
	publisher EventPublisher
	cache     ProductCache
	observer  CheckoutObserver
	payments  PaymentFactory
	now       func() time.Time
	opts      Options

	customers keyedMutex
	// stock serializes every read-check-debit of product stock.
	stock    sync.Mutex
	accounts sync.Mutex
}

func NewShopService(store repository.Store, pub EventPublisher, opts Options) *ShopService {
	return &ShopService{
		store:     store,
		publisher: pub,
		payments:  domain.NewPaymentStrategy,
		now:       time.Now,
		opts:      opts,
	}
}

func (s *ShopService) SetProductCache(c ProductCache) { s.cache = c }

func (s *ShopService) SetCheckoutObserver(o CheckoutObserver) { s.observer = o }

func (s *ShopService) SetPaymentFactory(f PaymentFactory) { s.payments = f }

func (s *ShopService) SetClock(now func() time.Time) { s.now = now }

func (s *ShopService) publish(ctx context.Context, key string, evt any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, key, evt); err != nil {
		log.Printf("Failed to publish %s event: %v", key, err)
	}
}

func (s *ShopService) invalidate(ctx context.Context, ids ...uint64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ids...)
	}
}

func (s *ShopService) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveCheckout(outcome)
	}
}

func (s *ShopService) requireUser(ctx context.Context, userID uint64) (*domain.User, error) {
	u, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.Unauthenticated("unknown user %d", userID)
	}
	return u, nil
}

func (s *ShopService) requireAdmin(ctx context.Context, userID uint64) (*domain.User, error) {
	u, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, domain.ErrAdminRequired
	}
	return u, nil
}

func (s *ShopService) requireCustomer(ctx context.Context, userID uint64) (*domain.User, error) {
	u, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleCustomer {
		return nil, domain.Forbidden("only customers have a cart")
	}
	return u, nil
}

// keyedMutex hands out one mutex per key and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key uint64) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[uint64]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
