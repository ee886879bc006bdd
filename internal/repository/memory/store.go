// Package memory is the default in-process Store. Every value is copied on the
// way in and on the way out, so callers never share state with the tables.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"shop-service/internal/domain"
	"shop-service/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	products       map[uint64]domain.Product
	users          map[uint64]domain.User
	carts          map[uint64]domain.Cart
	orders         map[uint64]domain.Order
	payments       map[uint64]domain.Payment
	paymentByOrder map[uint64]uint64
	invoices       map[uint64]domain.Invoice // keyed by order id

	productSeq uint64
	userSeq    uint64
	orderSeq   uint64
	paymentSeq uint64
	invoiceSeq uint64
	receiptSeq uint64
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		products:       make(map[uint64]domain.Product),
		users:          make(map[uint64]domain.User),
		carts:          make(map[uint64]domain.Cart),
		orders:         make(map[uint64]domain.Order),
		payments:       make(map[uint64]domain.Payment),
		paymentByOrder: make(map[uint64]uint64),
		invoices:       make(map[uint64]domain.Invoice),
		orderSeq:       repository.FirstOrderID - 1,
		paymentSeq:     repository.FirstPaymentID - 1,
		invoiceSeq:     repository.FirstInvoiceNumber - 1,
		receiptSeq:     repository.FirstReceiptNumber - 1,
	}
}

func (s *Store) SaveProduct(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	if p.ID > s.productSeq {
		s.productSeq = p.ID
	}
	return nil
}

func (s *Store) FindProduct(_ context.Context, id uint64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	if u.ID > s.userSeq {
		s.userSeq = u.ID
	}
	return nil
}

func (s *Store) FindUser(_ context.Context, id uint64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) SaveCart(_ context.Context, c *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.CustomerID] = cloneCart(*c)
	return nil
}

func (s *Store) FindCart(_ context.Context, customerID uint64) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[customerID]
	if !ok {
		return nil, nil
	}
	c = cloneCart(c)
	return &c, nil
}

func (s *Store) SaveOrder(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (s *Store) FindOrder(_ context.Context, id uint64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

func (s *Store) FindOrdersByCustomer(_ context.Context, customerID uint64) ([]domain.Order, error) {
	return s.filterOrders(func(o domain.Order) bool { return o.CustomerID == customerID }), nil
}

func (s *Store) ListOrders(_ context.Context) ([]domain.Order, error) {
	return s.filterOrders(func(domain.Order) bool { return true }), nil
}

func (s *Store) filterOrders(keep func(domain.Order) bool) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) SavePayment(_ context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = clonePayment(*p)
	if cur, ok := s.paymentByOrder[p.OrderID]; !ok || p.ID > cur {
		s.paymentByOrder[p.OrderID] = p.ID
	}
	return nil
}

func (s *Store) FindPayment(_ context.Context, id uint64) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, nil
	}
	p = clonePayment(p)
	return &p, nil
}

func (s *Store) FindPaymentByOrder(ctx context.Context, orderID uint64) (*domain.Payment, error) {
	s.mu.RLock()
	id, ok := s.paymentByOrder[orderID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.FindPayment(ctx, id)
}

func (s *Store) SaveInvoice(_ context.Context, i *domain.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[i.OrderID] = cloneInvoice(*i)
	return nil
}

func (s *Store) FindInvoiceByOrder(_ context.Context, orderID uint64) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.invoices[orderID]
	if !ok {
		return nil, nil
	}
	i = cloneInvoice(i)
	return &i, nil
}

func (s *Store) ListInvoices(_ context.Context) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Invoice, 0, len(s.invoices))
	for _, i := range s.invoices {
		out = append(out, cloneInvoice(i))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Number < out[b].Number })
	return out, nil
}

func (s *Store) next(seq *uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*seq++
	return *seq, nil
}

func (s *Store) NextProductID(context.Context) (uint64, error) { return s.next(&s.productSeq) }
func (s *Store) NextUserID(context.Context) (uint64, error) { return s.next(&s.userSeq) }
func (s *Store) NextOrderID(context.Context) (uint64, error) { return s.next(&s.orderSeq) }
func (s *Store) NextPaymentID(context.Context) (uint64, error) { return s.next(&s.paymentSeq) }
func (s *Store) NextInvoiceNumber(context.Context) (uint64, error) { return s.next(&s.invoiceSeq) }
func (s *Store) NextReceiptNumber(context.Context) (uint64, error) { return s.next(&s.receiptSeq) }
