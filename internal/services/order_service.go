package services

import (
	"context"

	"shop-service/internal/domain"
)

var errViewOrders = domain.Forbidden("viewing all orders not permitted")

// ListOrders returns every order for admins and the caller's own orders for
// customers, in id order.
func (s *ShopService) ListOrders(ctx context.Context, userID uint64) ([]OrderView, error) {
	u, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var orders []domain.Order
	switch {
	case u.CanViewAllOrders():
		orders, err = s.store.ListOrders(ctx)
	case u.Role == domain.RoleCustomer:
		orders, err = s.store.FindOrdersByCustomer(ctx, u.ID)
	default:
		return nil, errViewOrders
	}
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, orderView(&orders[i]))
	}
	return views, nil
}

// authorizeOrder loads the order and checks the caller may see it.
func (s *ShopService) authorizeOrder(ctx context.Context, userID, orderID uint64) (*domain.Order, error) {
	u, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	o, err := s.store.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("order %d not found", orderID)
	}
	if !u.CanViewAllOrders() && !o.OwnedBy(u.ID) {
		return nil, domain.Forbidden("order %d belongs to another customer", orderID)
	}
	return o, nil
}

func (s *ShopService) GetOrder(ctx context.Context, userID, orderID uint64) (*OrderView, error) {
	o, err := s.authorizeOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	v := orderView(o)
	return &v, nil
}

func (s *ShopService) UpdateOrderStatus(ctx context.Context, adminID, orderID uint64, status string) (*OrderView, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	o, err := s.store.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("order %d not found", orderID)
	}

	unlock := s.customers.Lock(o.CustomerID)
	defer unlock()

	from := o.Status
	if err := o.UpdateStatus(next); err != nil {
		return nil, err
	}
	if err := s.store.SaveOrder(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		From:       from,
		To:         o.Status,
		ChangedAt:  s.now(),
	})
	v := orderView(o)
	return &v, nil
}

func (s *ShopService) receipt(ctx context.Context, o *domain.Order) (*domain.Payment, error) {
	p, err := s.store.FindPaymentByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("no payment recorded for order %d", o.ID)
	}
	if p.Receipt == nil {
		return nil, domain.NotFound("no receipt issued for order %d", o.ID)
	}
	return p, nil
}

func (s *ShopService) GetReceipt(ctx context.Context, userID, orderID uint64) (*domain.ReceiptDocument, error) {
	o, err := s.authorizeOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	p, err := s.receipt(ctx, o)
	if err != nil {
		return nil, err
	}
	doc := p.Receipt.Render()
	return &doc, nil
}

// PrintReceipt formats the receipt once. Later calls return
// domain.ErrReceiptAlreadyPrinted.
func (s *ShopService) PrintReceipt(ctx context.Context, userID, orderID uint64) (string, error) {
	o, err := s.authorizeOrder(ctx, userID, orderID)
	if err != nil {
		return "", err
	}

	unlock := s.customers.Lock(o.CustomerID)
	defer unlock()

	p, err := s.receipt(ctx, o)
	if err != nil {
		return "", err
	}
	text, ok := p.Receipt.Print()
	if !ok {
		return "", domain.ErrReceiptAlreadyPrinted
	}
	if err := s.store.SavePayment(ctx, p); err != nil {
		return "", err
	}
	return text, nil
}

func (s *ShopService) invoice(ctx context.Context, orderID uint64) (*domain.Invoice, error) {
	inv, err := s.store.FindInvoiceByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NotFound("no invoice issued for order %d", orderID)
	}
	return inv, nil
}

func (s *ShopService) GetInvoice(ctx context.Context, userID, orderID uint64) (*domain.InvoiceDocument, error) {
	o, err := s.authorizeOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoice(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	doc := inv.Render()
	return &doc, nil
}

func (s *ShopService) InvoiceText(ctx context.Context, adminID, orderID uint64) (string, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return "", err
	}
	inv, err := s.invoice(ctx, orderID)
	if err != nil {
		return "", err
	}
	return inv.Text(), nil
}

func (s *ShopService) ListInvoices(ctx context.Context, adminID uint64) ([]domain.InvoiceDocument, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	invoices, err := s.store.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]domain.InvoiceDocument, 0, len(invoices))
	for i := range invoices {
		docs = append(docs, invoices[i].Render())
	}
	return docs, nil
}
