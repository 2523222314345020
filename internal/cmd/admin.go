package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/domain"
	"storefront/internal/service"
)

func newAdminCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "admin",
		Short: "Store administration (admin accounts only)",
	}
	c.AddCommand(
		newAdminOrdersCmd(opts),
		newAdminOrderStatusCmd(opts),
		newAdminUsersCmd(opts),
		newAdminUserCmd(opts),
		newAdminBlockCmd(opts, "block", true),
		newAdminBlockCmd(opts, "unblock", false),
		newAdminDashboardCmd(opts),
		newAdminProductsCmd(opts),
		newAdminProductAddCmd(opts),
		newAdminProductEditCmd(opts),
		newAdminProductDeleteCmd(opts),
	)
	return c
}

func newAdminOrdersCmd(opts *rootOptions) *cobra.Command {
	var search, status, sort string
	c := &cobra.Command{
		Use:   "orders",
		Short: "List every customer's orders",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			st, err := parseStatusFlag(status)
			if err != nil {
				return err
			}
			orders, err := a.AdminOrders.AllOrders(ctx, service.AdminOrderQuery{Search: search, Status: st, Sort: service.ParseOrderSort(sort)})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(orders) == 0 {
				fmt.Fprintln(out, "No orders found")
				return nil
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "ORDER\tUSER\tCUSTOMER\tEMAIL\tDATE\tSTATUS\tPAYMENT\tTOTAL")
			for _, o := range orders {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.UserID, o.CustomerName, o.CustomerEmail,
					o.Date.Format("2006-01-02"), o.Status, o.PaymentMethod, domain.FormatINR(o.TotalAmount))
			}
			return tw.Flush()
		}),
	}
	c.Flags().StringVar(&search, "search", "", "order id or customer email contains")
	c.Flags().StringVar(&status, "status", "all", "pending, shipped, delivered, cancelled or all")
	c.Flags().StringVar(&sort, "sort", "newest", "newest or oldest")
	return c
}

func newAdminOrderStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order-status <user-id> <order-id> <status>",
		Short: "Change an order's status",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			o, err := a.AdminOrders.SetStatus(ctx, args[0], args[1], domain.OrderStatus(args[2]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s\n", o.ID, o.Status)
			return nil
		}),
	}
}

func newAdminUsersCmd(opts *rootOptions) *cobra.Command {
	var search string
	c := &cobra.Command{
		Use:   "users",
		Short: "List users with spend and order counts",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			users, stats, err := a.AdminUsers.List(ctx, search)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Users: %d  Blocked: %d  With orders: %d\n", stats.Total, stats.Blocked, stats.WithOrders)
			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tBLOCKED\tORDERS\tSPENT")
			for _, s := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%d\t%s\n", s.User.ID, s.User.Username, s.User.Email, s.User.Role,
					s.User.Blocked, s.OrderCount, domain.FormatINR(s.TotalSpent))
			}
			return tw.Flush()
		}),
	}
	c.Flags().StringVar(&search, "search", "", "username or email contains")
	return c
}

func newAdminUserCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "user <user-id>",
		Short: "Show one user with recent orders",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			s, err := a.AdminUsers.Get(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s> role=%s blocked=%t\nOrders: %d  Spent: %s\n", s.User.Username, s.User.Email,
				s.User.Role, s.User.Blocked, s.OrderCount, domain.FormatINR(s.TotalSpent))
			for _, o := range s.RecentOrders {
				printOrder(out, o)
			}
			return nil
		}),
	}
}

func newAdminBlockCmd(opts *rootOptions, use string, blocked bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: use + " a user account",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			u, err := a.AdminUsers.SetBlocked(ctx, args[0], blocked)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s blocked=%t\n", u.Username, u.Blocked)
			return nil
		}),
	}
}

func newAdminDashboardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Store overview",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			d, err := a.Dashboard.Overview(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Users: %d  Products: %d  Orders: %d  Revenue: %s\n", d.Users, d.Products, d.Orders, d.RevenueText())
			tw := newTable(out)
			fmt.Fprintln(tw, "DAY\tORDERS\tREVENUE")
			for _, ds := range d.Daily {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", ds.Day, ds.Orders, domain.FormatINR(ds.Revenue))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Recent orders:")
			for _, o := range d.RecentOrders {
				fmt.Fprintf(out, "  %s  %s  %s  %s\n", o.ID, o.CustomerName, o.Status, domain.FormatINR(o.TotalAmount))
			}
			return nil
		}),
	}
}

func newAdminProductsCmd(opts *rootOptions) *cobra.Command {
	var q service.CatalogQuery
	var sort string
	var page int
	c := &cobra.Command{
		Use:   "products",
		Short: "Page through the catalog",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			q.Sort = service.PriceSort(sort)
			p, err := a.Products.List(ctx, q, page)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printProducts(out, p.Items)
			fmt.Fprintf(out, "Page %d of %d (%d products)\n", p.Page, p.TotalPages, p.Total)
			return nil
		}),
	}
	addCatalogFlags(c, &q, &sort)
	c.Flags().IntVar(&page, "page", 1, "page number")
	return c
}

type productFlags struct {
	in    service.ProductInput
	price string
	stock int
}

func (f *productFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.in.Name, "name", "", "product name")
	c.Flags().StringVar(&f.in.Brand, "brand", "", "brand")
	c.Flags().StringVar(&f.in.Category, "category", "", "category")
	c.Flags().StringVar(&f.price, "price", "", "price in rupees")
	c.Flags().StringVar(&f.in.Description, "description", "", "description")
	c.Flags().StringVar(&f.in.Image, "image", "", "image URL")
	c.Flags().IntVar(&f.stock, "stock", -1, "maximum quantity per order (-1 for the default)")
	c.Flags().BoolVar(&f.in.Featured, "featured", false, "show on the home page")
}

func (f *productFlags) input() (service.ProductInput, error) {
	in := f.in
	if f.price != "" {
		p, err := decimal.NewFromString(f.price)
		if err != nil {
			return in, &service.ValidationError{Field: "price", Message: "Invalid price"}
		}
		in.Price = &p
	}
	if f.stock >= 0 {
		s := f.stock
		in.Stock = &s
	}
	return in, nil
}

// fill keeps the stored value of every flag the user did not set
func (f *productFlags) fill(cmd *cobra.Command, p domain.Product) {
	set := cmd.Flags().Changed
	if !set("name") {
		f.in.Name = p.Name
	}
	if !set("brand") {
		f.in.Brand = p.Brand
	}
	if !set("category") {
		f.in.Category = p.Category
	}
	if !set("price") {
		f.price = p.Price.String()
	}
	if !set("description") {
		f.in.Description = p.Description
	}
	if !set("image") {
		f.in.Image = p.Image
	}
	if !set("stock") && p.Stock != nil {
		f.stock = *p.Stock
	}
	if !set("featured") {
		f.in.Featured = p.Featured
	}
}

func newAdminProductAddCmd(opts *rootOptions) *cobra.Command {
	f := &productFlags{}
	c := &cobra.Command{
		Use:   "product-add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			p, err := a.Products.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s added with id %s\n", p.Name, p.ID)
			return nil
		}),
	}
	f.register(c)
	return c
}

func newAdminProductEditCmd(opts *rootOptions) *cobra.Command {
	f := &productFlags{}
	c := &cobra.Command{
		Use:   "product-edit <product-id>",
		Short: "Edit a product",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			cur, err := a.Products.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			f.fill(cmd, *cur)
			in, err := f.input()
			if err != nil {
				return err
			}
			p, err := a.Products.Update(ctx, args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s updated\n", p.ID)
			return nil
		}),
	}
	f.register(c)
	return c
}

func newAdminProductDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product-delete <product-id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			if err := a.Products.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s deleted\n", args[0])
			return nil
		}),
	}
}
