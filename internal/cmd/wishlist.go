package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/service"
)

func newWishlistCmd(opts *rootOptions) *cobra.Command {
	list := func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		if !a.Session.IsAuthenticated() {
			return service.ErrNotAuthenticated
		}
		items := a.Wishlist.Items()
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Your wishlist is empty")
			return nil
		}
		printProducts(cmd.OutOrStdout(), items)
		return nil
	}
	c := &cobra.Command{
		Use:   "wishlist",
		Short: "Show or change the wishlist",
		Args:  cobra.NoArgs,
		RunE:  withApp(opts, list),
	}
	c.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the wishlist",
			Args:  cobra.NoArgs,
			RunE:  withApp(opts, list),
		},
		&cobra.Command{
			Use:   "toggle <product-id>",
			Short: "Add or remove a product",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				p, err := lookupProduct(ctx, a, args[0])
				if err != nil {
					return err
				}
				added, in, err := a.Wishlist.Toggle(ctx, p)
				if err != nil {
					return err
				}
				if added {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s to wishlist\n", p.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from wishlist\n", p.Name)
				}
				return awaitSync(ctx, in)
			}),
		},
		&cobra.Command{
			Use:   "move <product-id>",
			Short: "Move a product to the cart",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				p, err := lookupProduct(ctx, a, args[0])
				if err != nil {
					return err
				}
				intents, err := a.Wishlist.MoveToCart(ctx, p, a.Cart)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to cart\n", p.Name)
				return awaitSync(ctx, intents...)
			}),
		},
		&cobra.Command{
			Use:   "move-all",
			Short: "Move every product to the cart",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				intents, err := a.Wishlist.MoveAllToCart(ctx, a.Cart)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All items moved to cart")
				return awaitSync(ctx, intents...)
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the wishlist",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				in, err := a.Wishlist.ClearWishlist(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Wishlist cleared")
				return awaitSync(ctx, in)
			}),
		},
	)
	return c
}
