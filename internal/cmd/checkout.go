package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/domain"
	"storefront/internal/service"
)

func newCheckoutCmd(opts *rootOptions) *cobra.Command {
	var form service.CheckoutForm
	var quote bool
	c := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Long: `Place an order for everything in the cart. Address flags replace single
fields of the saved address; --edit-address also stores the result.
Payment methods: UPI (--txn), card (--card-number --expiry --cvv --card-name)
and cod, which adds a convenience fee.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			out := cmd.OutOrStdout()
			if quote {
				method, ok := domain.ParsePaymentMethod(form.Payment.Method)
				if !ok {
					method = domain.PaymentUPI
				}
				printCart(out, a.Cart.Items())
				printTotals(out, a.Checkout.Quote(method))
				if addr, ok := a.Checkout.SavedAddress(); ok {
					fmt.Fprintf(out, "Ship to: %s, %s, %s %s\n", addr.FullName, addr.Address, addr.City, addr.Pincode)
				}
				return nil
			}
			res, err := a.Checkout.PlaceOrder(ctx, form)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Order placed successfully")
			printOrder(out, res.Order)
			printTotals(out, res.Totals)
			return awaitSync(ctx, res.CartSync)
		}),
	}
	addAddressFlags(c, &form.Address)
	c.Flags().BoolVar(&form.EditAddress, "edit-address", false, "save the given address to the profile")
	c.Flags().StringVar(&form.Payment.Method, "method", "", "payment method: UPI, card or cod")
	c.Flags().StringVar(&form.Payment.TransactionID, "txn", "", "UPI transaction id (35 alphanumeric characters)")
	c.Flags().StringVar(&form.Payment.CardNumber, "card-number", "", "16-digit card number")
	c.Flags().StringVar(&form.Payment.Expiry, "expiry", "", "card expiry MM/YY")
	c.Flags().StringVar(&form.Payment.CVV, "cvv", "", "3-digit CVV")
	c.Flags().StringVar(&form.Payment.CardName, "card-name", "", "name on card")
	c.Flags().BoolVar(&quote, "quote", false, "only show the totals for --method")
	return c
}
