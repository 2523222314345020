package service

import (
	"context"

	"storefront/internal/remotesync"
)

// QuantityControls is derived per cart line from (product id, quantity, stock ceiling)
type QuantityControls struct {
	cart      *CartService
	ProductID string
	Quantity  int
	Ceiling   int
}

func NewQuantityControls(cart *CartService, productID string, quantity, ceiling int) QuantityControls {
	return QuantityControls{cart: cart, ProductID: productID, Quantity: quantity, Ceiling: ceiling}
}

// Controls derives the helper for a line currently in the cart
func (c *CartService) Controls(productID string) (QuantityControls, bool) {
	li, ok := c.Line(productID)
	if !ok {
		return QuantityControls{}, false
	}
	return NewQuantityControls(c, li.ID, li.Quantity, li.StockCeiling()), true
}

func (q QuantityControls) CanIncrease() bool { return q.Quantity < q.Ceiling }
func (q QuantityControls) CanDecrease() bool { return q.Quantity > 1 }

// Increase reports ErrStockLimitReached at the ceiling without touching the cart
func (q QuantityControls) Increase(ctx context.Context) (*remotesync.Intent, error) {
	if !q.CanIncrease() {
		return nil, ErrStockLimitReached
	}
	return q.cart.UpdateQuantity(ctx, q.ProductID, q.Quantity+1)
}

// Decrease is a skipped no-op at quantity 1; use Remove instead
func (q QuantityControls) Decrease(ctx context.Context) (*remotesync.Intent, error) {
	if !q.CanDecrease() {
		return remotesync.Skipped("cart:quantity"), nil
	}
	return q.cart.UpdateQuantity(ctx, q.ProductID, q.Quantity-1)
}

func (q QuantityControls) Remove(ctx context.Context) (*remotesync.Intent, error) {
	return q.cart.RemoveFromCart(ctx, q.ProductID)
}
