package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/remotesync"
	"storefront/internal/repository"
)

// CartService holds the signed-in user's cart. Mutations apply locally first;
// the remote write is queued and reported through the returned intent.
type CartService struct {
	session *SessionService
	users   repository.UserRepository
	queue   *remotesync.Queue
	now     func() time.Time

	mu    sync.RWMutex
	items []domain.CartLineItem
}

func NewCartService(session *SessionService, users repository.UserRepository, queue *remotesync.Queue) *CartService {
	c := &CartService{
		session: session,
		users:   users,
		queue:   queue,
		now:     func() time.Time { return time.Now().UTC() },
	}
	session.Subscribe(c.load)
	return c
}

// load resets local state whenever the identity changes
func (c *CartService) load(u *domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u == nil {
		c.items = nil
		return
	}
	c.items = append([]domain.CartLineItem{}, u.Cart...)
}

func (c *CartService) Items() []domain.CartLineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.CartLineItem{}, c.items...)
}

// Line returns the cart line for a product
func (c *CartService) Line(productID string) (domain.CartLineItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, li := range c.items {
		if li.ID == productID {
			return li, true
		}
	}
	return domain.CartLineItem{}, false
}

// Count is the sum of quantities
func (c *CartService) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, li := range c.items {
		n += li.Quantity
	}
	return n
}

func (c *CartService) Subtotal() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.CartSubtotal(c.items)
}

// AddToCart adds one unit, merging into an existing line for the same product
func (c *CartService) AddToCart(ctx context.Context, p domain.Product) (*remotesync.Intent, error) {
	uid := c.session.UserID()
	if uid == "" {
		return nil, ErrNotAuthenticated
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	merged := false
	for i := range c.items {
		if c.items[i].ID == p.ID {
			c.items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		c.items = append(c.items, domain.CartLineItem{Product: p, Quantity: 1})
	}
	return c.pushLocked(ctx, uid, "cart:add"), nil
}

func (c *CartService) RemoveFromCart(ctx context.Context, productID string) (*remotesync.Intent, error) {
	uid := c.session.UserID()
	if uid == "" {
		return nil, ErrNotAuthenticated
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0:0]
	for _, li := range c.items {
		if li.ID != productID {
			kept = append(kept, li)
		}
	}
	c.items = kept
	return c.pushLocked(ctx, uid, "cart:remove"), nil
}

// UpdateQuantity sets an absolute quantity; values below 1 and unknown lines are skipped
func (c *CartService) UpdateQuantity(ctx context.Context, productID string, quantity int) (*remotesync.Intent, error) {
	uid := c.session.UserID()
	if uid == "" {
		return nil, ErrNotAuthenticated
	}
	if quantity < 1 {
		return remotesync.Skipped("cart:quantity"), nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	found := false
	for i := range c.items {
		if c.items[i].ID == productID {
			c.items[i].Quantity = quantity
			found = true
		}
	}
	if !found {
		return remotesync.Skipped("cart:quantity"), nil
	}
	return c.pushLocked(ctx, uid, "cart:quantity"), nil
}

func (c *CartService) ClearCart(ctx context.Context) (*remotesync.Intent, error) {
	uid := c.session.UserID()
	if uid == "" {
		return nil, ErrNotAuthenticated
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []domain.CartLineItem{}
	return c.pushLocked(ctx, uid, "cart:clear"), nil
}

// pushLocked queues a whole-cart PATCH; enqueueing under the lock keeps pushes in mutation order
func (c *CartService) pushLocked(ctx context.Context, uid, label string) *remotesync.Intent {
	snapshot := append([]domain.CartLineItem{}, c.items...)
	return c.queue.Enqueue(ctx, remotesync.Task{
		Label:  label,
		Fields: map[string]interface{}{"user": uid},
		Run: func(ctx context.Context) error {
			now := c.now()
			if _, err := c.users.Patch(ctx, uid, repository.UserPatch{Cart: &snapshot, UpdatedAt: &now}); err != nil {
				return err
			}
			return c.session.Mirror(ctx, uid, func(u *domain.User) {
				u.Cart = append([]domain.CartLineItem{}, snapshot...)
			})
		},
	})
}
