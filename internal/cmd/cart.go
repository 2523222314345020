package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/service"
)

func newCartCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE:  withApp(opts, listCart),
	}
	c.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the cart",
			Args:  cobra.NoArgs,
			RunE:  withApp(opts, listCart),
		},
		&cobra.Command{
			Use:   "add <product-id>",
			Short: "Add one unit of a product",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				p, err := lookupProduct(ctx, a, args[0])
				if err != nil {
					return err
				}
				in, err := a.Cart.AddToCart(ctx, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to cart\n", p.Name)
				return awaitSync(ctx, in)
			}),
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a product line",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				in, err := a.Cart.RemoveFromCart(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Removed from cart")
				return awaitSync(ctx, in)
			}),
		},
		&cobra.Command{
			Use:   "inc <product-id>",
			Short: "Increase quantity by one",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				ctl, err := controls(a, args[0])
				if err != nil {
					return err
				}
				in, err := ctl.Increase(ctx)
				if err != nil {
					return err
				}
				return awaitSync(ctx, in)
			}),
		},
		&cobra.Command{
			Use:   "dec <product-id>",
			Short: "Decrease quantity by one",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				ctl, err := controls(a, args[0])
				if err != nil {
					return err
				}
				if !ctl.CanDecrease() {
					fmt.Fprintln(cmd.OutOrStdout(), "Quantity is already 1; use cart remove")
				}
				in, err := ctl.Decrease(ctx)
				if err != nil {
					return err
				}
				return awaitSync(ctx, in)
			}),
		},
		&cobra.Command{
			Use:   "set <product-id> <quantity>",
			Short: "Set an absolute quantity",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				q, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity: %w", service.ErrInvalidInput)
				}
				in, err := a.Cart.UpdateQuantity(ctx, args[0], q)
				if err != nil {
					return err
				}
				return awaitSync(ctx, in)
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				in, err := a.Cart.ClearCart(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared")
				return awaitSync(ctx, in)
			}),
		},
	)
	return c
}

func listCart(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
	if !a.Session.IsAuthenticated() {
		return service.ErrNotAuthenticated
	}
	printCart(cmd.OutOrStdout(), a.Cart.Items())
	return nil
}

func controls(a *app.App, productID string) (service.QuantityControls, error) {
	ctl, ok := a.Cart.Controls(productID)
	if !ok {
		return ctl, fmt.Errorf("product %s is not in the cart", productID)
	}
	return ctl, nil
}
