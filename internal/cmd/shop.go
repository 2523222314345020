package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/domain"
	"storefront/internal/service"
)

func addCatalogFlags(c *cobra.Command, q *service.CatalogQuery, sort *string) {
	c.Flags().StringVar(&q.Search, "search", "", "name contains")
	c.Flags().StringVar(&q.Category, "category", "all", "category or all")
	c.Flags().StringVar(&q.Brand, "brand", "all", "brand or all")
	c.Flags().StringVar(sort, "sort", "", "price order: low or high")
}

func newProductsCmd(opts *rootOptions) *cobra.Command {
	var q service.CatalogQuery
	var sort string
	var featured, filters bool
	c := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			out := cmd.OutOrStdout()
			if filters {
				brands, err := a.Catalog.Brands(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Categories: %v\nBrands: %v\n", service.Categories, brands)
				return nil
			}
			var list []domain.Product
			var err error
			if featured {
				list, err = a.Catalog.Featured(ctx)
			} else {
				q.Sort = service.PriceSort(sort)
				list, err = a.Catalog.Browse(ctx, q)
			}
			if err != nil {
				return err
			}
			printProducts(out, list)
			return nil
		}),
	}
	addCatalogFlags(c, &q, &sort)
	c.Flags().BoolVar(&featured, "featured", false, "only featured products")
	c.Flags().BoolVar(&filters, "filters", false, "list available categories and brands")
	return c
}

func newProductCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			v, err := a.Catalog.Product(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := v.Product
			fmt.Fprintf(out, "%s (%s)\n%s · %s\n%s\n", p.Name, p.ID, p.Brand, p.Category, domain.FormatINR(p.Price))
			if p.Description != "" {
				fmt.Fprintln(out, p.Description)
			}
			fmt.Fprintf(out, "Max per order: %d\n", p.StockCeiling())
			if v.Controls != nil {
				fmt.Fprintf(out, "In cart: %d\n", v.InCart)
			}
			if v.Wishlisted {
				fmt.Fprintln(out, "In wishlist")
			}
			return nil
		}),
	}
}

// lookupProduct reads the product a cart or wishlist command refers to
func lookupProduct(ctx context.Context, a *app.App, id string) (domain.Product, error) {
	v, err := a.Catalog.Product(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, err)
	}
	return v.Product, nil
}
