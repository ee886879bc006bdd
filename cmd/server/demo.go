package main

import (
	"context"
	"fmt"
	"io"

	"shop-service/internal/catalog"
	"shop-service/internal/infra/events"
	"shop-service/internal/repository/memory"
	"shop-service/internal/services"

	"github.com/spf13/cobra"
)

type demoOptions struct {
	method  string
	details string
}

func newDemoCommand() *cobra.Command {
	opts := &demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Check out a sample cart against the built-in catalog and print the documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.method, "method", "wallet", "payment method (wallet|bank|paypal)")
	cmd.Flags().StringVar(&opts.details, "details", "GoPay", "provider, account number or PayPal email")
	return cmd
}

func runDemo(ctx context.Context, out io.Writer, opts *demoOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store := memory.New()
	seed := catalog.Default()
	if _, err := catalog.Apply(ctx, store, seed); err != nil {
		return err
	}
	s := services.NewShopService(store, events.Nop{}, services.Options{})

	user, err := s.Authenticate(ctx, "customer@example.com", "password123")
	if err != nil {
		return err
	}
	for _, item := range []struct {
		productID uint64
		quantity  int64
	}{{1, 2}, {2, 1}} {
		if _, err := s.CartAdd(ctx, user.ID, item.productID, item.quantity); err != nil {
			return err
		}
	}

	res, err := s.Checkout(ctx, user.ID, services.CheckoutRequest{Method: opts.method, Credential: opts.details})
	if err != nil {
		return err
	}

	admin, err := s.Authenticate(ctx, "admin@example.com", "admin123")
	if err != nil {
		return err
	}
	invoice, err := s.InvoiceText(ctx, admin.ID, res.Order.ID)
	if err != nil {
		return err
	}
	receipt, err := s.PrintReceipt(ctx, user.ID, res.Order.ID)
	if err != nil {
		return err
	}
	fmt.Fprint(out, invoice)
	fmt.Fprintln(out)
	fmt.Fprint(out, receipt)
	return nil
}
