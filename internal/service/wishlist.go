package service

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/remotesync"
	"storefront/internal/repository"
)

// CartAdder is the part of the cart the wishlist moves items into
type CartAdder interface {
	AddToCart(ctx context.Context, p domain.Product) (*remotesync.Intent, error)
}

// WishlistService mirrors CartService for the saved-for-later list
type WishlistService struct {
	session *SessionService
	users   repository.UserRepository
	queue   *remotesync.Queue
	now     func() time.Time

	mu    sync.RWMutex
	items []domain.Product
}

func NewWishlistService(session *SessionService, users repository.UserRepository, queue *remotesync.Queue) *WishlistService {
	w := &WishlistService{
		session: session,
		users:   users,
		queue:   queue,
		now:     func() time.Time { return time.Now().UTC() },
	}
	session.Subscribe(w.load)
	return w
}

func (w *WishlistService) load(u *domain.User) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if u == nil {
		w.items = nil
		return
	}
	w.items = append([]domain.Product{}, u.Wishlist...)
}

func (w *WishlistService) Items() []domain.Product {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]domain.Product{}, w.items...)
}

func (w *WishlistService) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.items)
}

func (w *WishlistService) IsInWishlist(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return indexProduct(w.items, productID) >= 0
}

// Toggle adds the product when absent and removes it when present
func (w *WishlistService) Toggle(ctx context.Context, p domain.Product) (added bool, in *remotesync.Intent, err error) {
	uid := w.session.UserID()
	if uid == "" {
		return false, nil, ErrNotAuthenticated
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := indexProduct(w.items, p.ID); i >= 0 {
		w.items = append(w.items[:i:i], w.items[i+1:]...)
		return false, w.pushLocked(ctx, uid, "wishlist:remove"), nil
	}
	w.items = append(w.items, p)
	return true, w.pushLocked(ctx, uid, "wishlist:add"), nil
}

func (w *WishlistService) RemoveFromWishlist(ctx context.Context, productID string) (*remotesync.Intent, error) {
	uid := w.session.UserID()
	if uid == "" {
		return nil, ErrNotAuthenticated
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := indexProduct(w.items, productID); i >= 0 {
		w.items = append(w.items[:i:i], w.items[i+1:]...)
	}
	return w.pushLocked(ctx, uid, "wishlist:remove"), nil
}

func (w *WishlistService) ClearWishlist(ctx context.Context) (*remotesync.Intent, error) {
	uid := w.session.UserID()
	if uid == "" {
		return nil, ErrNotAuthenticated
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = []domain.Product{}
	return w.pushLocked(ctx, uid, "wishlist:clear"), nil
}

// MoveToCart adds the product to the cart, then drops it from the wishlist
func (w *WishlistService) MoveToCart(ctx context.Context, p domain.Product, cart CartAdder) ([]*remotesync.Intent, error) {
	cartIn, err := cart.AddToCart(ctx, p)
	if err != nil {
		return nil, err
	}
	wishIn, err := w.RemoveFromWishlist(ctx, p.ID)
	if err != nil {
		return []*remotesync.Intent{cartIn}, err
	}
	return []*remotesync.Intent{cartIn, wishIn}, nil
}

// MoveAllToCart adds every wishlisted product to the cart, then clears the wishlist
func (w *WishlistService) MoveAllToCart(ctx context.Context, cart CartAdder) ([]*remotesync.Intent, error) {
	var intents []*remotesync.Intent
	for _, p := range w.Items() {
		in, err := cart.AddToCart(ctx, p)
		if err != nil {
			return intents, err
		}
		intents = append(intents, in)
	}
	in, err := w.ClearWishlist(ctx)
	if err != nil {
		return intents, err
	}
	return append(intents, in), nil
}

func (w *WishlistService) pushLocked(ctx context.Context, uid, label string) *remotesync.Intent {
	snapshot := append([]domain.Product{}, w.items...)
	return w.queue.Enqueue(ctx, remotesync.Task{
		Label:  label,
		Fields: map[string]interface{}{"user": uid},
		Run: func(ctx context.Context) error {
			now := w.now()
			if _, err := w.users.Patch(ctx, uid, repository.UserPatch{Wishlist: &snapshot, UpdatedAt: &now}); err != nil {
				return err
			}
			return w.session.Mirror(ctx, uid, func(u *domain.User) {
				u.Wishlist = append([]domain.Product{}, snapshot...)
			})
		},
	})
}

func indexProduct(ps []domain.Product, id string) int {
	for i, p := range ps {
		if p.ID == id {
			return i
		}
	}
	return -1
}
