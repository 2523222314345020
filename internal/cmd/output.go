package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"storefront/internal/domain"
	"storefront/internal/remotesync"
	"storefront/internal/service"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printProducts(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tCATEGORY\tPRICE\tFEATURED")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n", p.ID, p.Name, p.Brand, p.Category, domain.FormatINR(p.Price), p.Featured)
	}
	tw.Flush()
}

func printCart(w io.Writer, items []domain.CartLineItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tTOTAL")
	for _, li := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n", li.ID, li.Name, domain.FormatINR(li.Price), li.Quantity, li.StockCeiling(), domain.FormatINR(li.LineTotal()))
	}
	tw.Flush()
	fmt.Fprintf(w, "Subtotal: %s\n", domain.FormatINR(domain.CartSubtotal(items)))
}

func printOrder(w io.Writer, o domain.Order) {
	fmt.Fprintf(w, "%s  %s  %s  %s  %s\n", o.ID, o.Date.Format("2006-01-02 15:04"), o.Status, o.PaymentMethod, domain.FormatINR(o.TotalAmount))
	for _, it := range o.Items {
		fmt.Fprintf(w, "    %s × %d  %s\n", it.Name, it.Quantity, domain.FormatINR(it.LineTotal()))
	}
	if o.CancelledBy != "" && o.CancelledAt != nil {
		fmt.Fprintf(w, "    cancelled by %s at %s\n", o.CancelledBy, o.CancelledAt.Format("2006-01-02 15:04"))
	}
}

func printTotals(w io.Writer, t service.Totals) {
	fmt.Fprintf(w, "Subtotal: %s\n", domain.FormatINR(t.Subtotal))
	if !t.Fee.IsZero() {
		fmt.Fprintf(w, "Convenience fee: %s\n", domain.FormatINR(t.Fee))
	}
	fmt.Fprintf(w, "Total: %s\n", domain.FormatINR(t.Total))
}

// awaitSync blocks until the remote writes behind intents resolve
func awaitSync(ctx context.Context, intents ...*remotesync.Intent) error {
	if err := remotesync.WaitAll(ctx, intents...); err != nil {
		return fmt.Errorf("saved locally but not on the server: %w", err)
	}
	return nil
}
