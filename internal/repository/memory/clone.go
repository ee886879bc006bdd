package memory

import "shop-service/internal/domain"

func cloneCart(c domain.Cart) domain.Cart {
	c.Lines = append([]domain.CartLine(nil), c.Lines...)
	return c
}

func cloneOrder(o domain.Order) domain.Order {
	o.Lines = append([]domain.OrderLine(nil), o.Lines...)
	return o
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	return append([]domain.LineItem(nil), items...)
}

func clonePayment(p domain.Payment) domain.Payment {
	if p.Receipt != nil {
		r := *p.Receipt
		r.Items = cloneItems(r.Items)
		p.Receipt = &r
	}
	return p
}

func cloneInvoice(i domain.Invoice) domain.Invoice {
	i.Items = cloneItems(i.Items)
	return i
}
