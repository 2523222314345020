package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/domain"
	"storefront/internal/service"
)

func parseStatusFlag(s string) (domain.OrderStatus, error) {
	if s == "" || s == "all" {
		return "", nil
	}
	st, ok := domain.ParseOrderStatus(s)
	if !ok {
		return "", fmt.Errorf("unknown status %q: %w", s, service.ErrInvalidInput)
	}
	return st, nil
}

func newOrdersCmd(opts *rootOptions) *cobra.Command {
	var status, sort string
	list := func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		st, err := parseStatusFlag(status)
		if err != nil {
			return err
		}
		orders, err := a.Orders.MyOrders(ctx, service.OrderQuery{Status: st, Sort: service.ParseOrderSort(sort)})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(orders) == 0 {
			fmt.Fprintln(out, "No orders found")
			return nil
		}
		for _, o := range orders {
			printOrder(out, o)
		}
		return nil
	}
	c := &cobra.Command{
		Use:   "orders",
		Short: "Show your orders",
		Args:  cobra.NoArgs,
		RunE:  withApp(opts, list),
	}
	c.PersistentFlags().StringVar(&status, "status", "all", "pending, shipped, delivered, cancelled or all")
	c.PersistentFlags().StringVar(&sort, "sort", "newest", "newest or oldest")
	c.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show your orders",
			Args:  cobra.NoArgs,
			RunE:  withApp(opts, list),
		},
		&cobra.Command{
			Use:   "cancel <order-id>",
			Short: "Cancel a pending order",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				o, err := a.Orders.CancelMyOrder(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Order cancelled")
				printOrder(cmd.OutOrStdout(), *o)
				return nil
			}),
		},
	)
	return c
}
