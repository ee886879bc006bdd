package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/domain"
	"shop-service/internal/logging"
)

// Checkout outcomes reported to the CheckoutObserver.
const (
	OutcomeSuccess       = "success"
	OutcomeEmptyCart     = "empty_cart"
	OutcomeInvalidMethod = "invalid_method"
	OutcomeStock         = "insufficient_stock"
	OutcomePaymentFailed = "payment_failed"
	OutcomeError         = "error"
)

type CheckoutRequest struct {
	Method     string `json:"paymentMethod"`
	Credential string `json:"paymentDetails"`
}

type checkoutRun struct {
	s          *ShopService
	customerID uint64
	orderID    uint64
	started    time.Time
}

func (r *checkoutRun) log(step, status, msg string) {
	logging.Log(logging.Fields{
		Service:    "checkout",
		OrderID:    r.orderID,
		CustomerID: r.customerID,
		Step:       step,
		Status:     status,
		DurationMS: time.Since(r.started).Milliseconds(),
		Message:    msg,
	})
}

// Checkout turns the customer's cart into an order, debits stock, issues an
// invoice and runs the payment. The steps run in a fixed order:
//
//  1. validate cart lines against live stock
//  2. create the order from a frozen copy of the lines
//  3. debit stock
//  4. persist the order
//  5. issue an Unpaid invoice
//  6. create a Pending payment
//  7. execute the payment
//  8. on success mark the invoice Paid, issue a receipt and clear the cart
//
// A failure in step 1 leaves nothing behind. A declined payment returns a
// *domain.PaymentError; the order, the stock debit, the Unpaid invoice and the
// Failed payment all remain unless ReleaseStockOnFailure is set, in which case
// stock is restored and the order is Cancelled. The cart is kept either way.
func (s *ShopService) Checkout(ctx context.Context, customerID uint64, req CheckoutRequest) (*CheckoutResult, error) {
	run := &checkoutRun{s: s, customerID: customerID, started: time.Now()}
	res, outcome, err := run.execute(ctx, req)
	s.observe(outcome)
	if err != nil {
		run.log("checkout", outcome, err.Error())
		return nil, err
	}
	run.log("checkout", outcome, "")
	return res, nil
}

func (r *checkoutRun) execute(ctx context.Context, req CheckoutRequest) (*CheckoutResult, string, error) {
	s := r.s
	user, err := s.requireCustomer(ctx, r.customerID)
	if err != nil {
		return nil, OutcomeError, err
	}

	unlock := s.customers.Lock(r.customerID)
	defer unlock()

	cart, err := s.cart(ctx, r.customerID)
	if err != nil {
		return nil, OutcomeError, err
	}
	if cart.IsEmpty() {
		return nil, OutcomeEmptyCart, domain.ErrEmptyCart
	}
	strategy, err := s.payments(req.Method, req.Credential)
	if err != nil {
		return nil, OutcomeInvalidMethod, err
	}

	order, err := r.placeOrder(ctx, cart)
	if errors.Is(err, domain.ErrValidation) {
		return nil, OutcomeStock, err
	}
	if err != nil {
		return nil, OutcomeError, err
	}

	now := s.now()
	number, err := s.store.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, OutcomeError, err
	}
	invoice := domain.NewInvoice(number, order, user.DisplayName(), now, s.opts.InvoiceDue)
	if err := s.store.SaveInvoice(ctx, invoice); err != nil {
		return nil, OutcomeError, err
	}
	r.log("invoice", "issued", invoice.Code())

	paymentID, err := s.store.NextPaymentID(ctx)
	if err != nil {
		return nil, OutcomeError, err
	}
	payment := domain.NewPayment(paymentID, order.ID, order.Total, strategy, now)

	if !payment.Process() {
		return nil, OutcomePaymentFailed, r.declined(ctx, order, invoice, payment)
	}
	r.log("payment", string(payment.Status), payment.MethodLabel)

	invoice.MarkPaid()
	if err := s.store.SaveInvoice(ctx, invoice); err != nil {
		return nil, OutcomeError, err
	}
	receiptNo, err := s.store.NextReceiptNumber(ctx)
	if err != nil {
		return nil, OutcomeError, err
	}
	receipt := payment.IssueReceipt(receiptNo, user.DisplayName(), order.Items(), now)
	if err := s.store.SavePayment(ctx, payment); err != nil {
		return nil, OutcomeError, err
	}

	cart.Clear()
	cart.UpdatedAt = now
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, OutcomeError, err
	}

	s.publish(ctx, domain.EventPaymentCompleted, domain.PaymentEvent{
		PaymentID:     payment.ID,
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		Amount:        payment.Amount,
		Method:        payment.Method,
		Status:        payment.Status,
		InvoiceNumber: invoice.Code(),
		ReceiptNumber: receipt.Code(),
	})

	return &CheckoutResult{
		Order:   orderView(order),
		Payment: paymentView(payment),
		Invoice: invoice.Render(),
	}, OutcomeSuccess, nil
}

// placeOrder runs steps 1 to 4 under the stock lock.
func (r *checkoutRun) placeOrder(ctx context.Context, cart *domain.Cart) (*domain.Order, error) {
	s := r.s
	s.stock.Lock()
	defer s.stock.Unlock()

	products := make(map[uint64]*domain.Product, len(cart.Lines))
	for _, l := range cart.Lines {
		if l.Quantity <= 0 {
			r.log("validate", "invalid_quantity", l.ProductName)
			return nil, domain.Validation("%s: %s", l.ProductName, domain.ErrInvalidQuantity)
		}
		p, err := s.store.FindProduct(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		var stock int64
		if p != nil {
			stock = p.Stock
		}
		if status, msg := domain.CheckStock(l.ProductName, l.Quantity, stock); status != domain.StockOK {
			r.log("validate", string(status), msg)
			return nil, domain.Validation("%s", msg)
		}
		products[l.ProductID] = p
	}

	id, err := s.store.NextOrderID(ctx)
	if err != nil {
		return nil, err
	}
	r.orderID = id
	now := s.now()
	order := domain.NewOrder(id, r.customerID, domain.FreezeLines(cart.Lines), now)

	ids := make([]uint64, 0, len(order.Lines))
	for _, l := range order.Lines {
		p := products[l.ProductID]
		p.UpdateStock(-l.Quantity)
		p.UpdatedAt = now
		if err := s.store.SaveProduct(ctx, p); err != nil {
			return nil, fmt.Errorf("debit stock for product %d: %w", p.ID, err)
		}
		ids = append(ids, p.ID)
	}
	s.invalidate(ctx, ids...)
	r.log("stock", "debited", "")

	if err := s.store.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	r.log("order", string(order.Status), "")

	var items int64
	for _, l := range order.Lines {
		items += l.Quantity
	}
	s.publish(ctx, domain.EventOrderPlaced, domain.OrderPlacedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total,
		ItemCount:  items,
		CreatedAt:  order.CreatedAt,
	})
	return order, nil
}

func (r *checkoutRun) declined(ctx context.Context, order *domain.Order, invoice *domain.Invoice, payment *domain.Payment) error {
	s := r.s
	r.log("payment", string(payment.Status), payment.MethodLabel)
	if err := s.store.SavePayment(ctx, payment); err != nil {
		return err
	}

	if s.opts.ReleaseStockOnFailure {
		if err := r.release(ctx, order); err != nil {
			return err
		}
	}

	s.publish(ctx, domain.EventPaymentFailed, domain.PaymentEvent{
		PaymentID:     payment.ID,
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		Amount:        payment.Amount,
		Method:        payment.Method,
		Status:        payment.Status,
		InvoiceNumber: invoice.Code(),
	})
	return &domain.PaymentError{OrderID: order.ID, PaymentID: payment.ID, Method: payment.MethodLabel}
}

// release puts the order's quantities back and cancels it.
func (r *checkoutRun) release(ctx context.Context, order *domain.Order) error {
	s := r.s
	s.stock.Lock()
	defer s.stock.Unlock()

	now := s.now()
	ids := make([]uint64, 0, len(order.Lines))
	for _, l := range order.Lines {
		p, err := s.store.FindProduct(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			continue
		}
		p.UpdateStock(l.Quantity)
		p.UpdatedAt = now
		if err := s.store.SaveProduct(ctx, p); err != nil {
			return err
		}
		ids = append(ids, p.ID)
	}
	s.invalidate(ctx, ids...)

	from := order.Status
	order.Status = domain.StatusCancelled
	if err := s.store.SaveOrder(ctx, order); err != nil {
		return err
	}
	r.log("release", "restored", "")
	s.publish(ctx, domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		From:       from,
		To:         order.Status,
		ChangedAt:  now,
	})
	return nil
}
