package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/localstore"
	"storefront/internal/logger"
	"storefront/internal/remotesync"
	"storefront/internal/repository"
)

type fixture struct {
	store       *repository.MemoryStore
	users       *repository.MemoryUsers
	cache       *localstore.FileCache
	queue       *remotesync.Queue
	session     *SessionService
	cart        *CartService
	wishlist    *WishlistService
	checkout    *CheckoutService
	orders      *OrderService
	adminOrders *AdminOrderService
	adminUsers  *AdminUserService
	products    *ProductService
	catalog     *CatalogService
	dashboard   *DashboardService
}

// stepClock returns a clock that moves one second forward per reading
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

func setup(t *testing.T) *fixture {
	t.Helper()
	log := logger.Nop()
	store := repository.NewMemoryStore()
	users := repository.NewMemoryUsers(store)
	cache := localstore.NewFileCache(filepath.Join(t.TempDir(), "session.json"))
	queue := remotesync.NewQueue(log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.Close(ctx)
	})

	now := stepClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	f := &fixture{store: store, users: users, cache: cache, queue: queue}
	f.session = NewSessionService(users, cache, log)
	f.session.now = now
	f.cart = NewCartService(f.session, users, queue)
	f.cart.now = now
	f.wishlist = NewWishlistService(f.session, users, queue)
	f.wishlist.now = now
	f.checkout = NewCheckoutService(f.session, f.cart, users, log, DefaultCODFee)
	f.checkout.now = now
	f.orders = NewOrderService(f.session, users, log)
	f.orders.now = now
	f.adminOrders = NewAdminOrderService(f.session, users, log)
	f.adminOrders.now = now
	f.adminUsers = NewAdminUserService(f.session, users, log)
	f.adminUsers.now = now
	f.products = NewProductService(f.session, store, log)
	f.products.now = now
	f.catalog = NewCatalogService(store, f.cart, f.wishlist)
	f.dashboard = NewDashboardService(f.session, users, store)
	return f
}

func (f *fixture) addUser(t *testing.T, u domain.User) domain.User {
	t.Helper()
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if err := f.users.Create(context.Background(), &u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (f *fixture) addProduct(t *testing.T, p domain.Product) domain.Product {
	t.Helper()
	if err := f.store.Create(context.Background(), &p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// signIn seeds a customer and logs them in
func (f *fixture) signIn(t *testing.T) domain.User {
	t.Helper()
	u := f.addUser(t, domain.User{ID: "u1", Username: "neo", Email: "neo@matrix.io", Password: "secret1"})
	if _, err := f.session.Login(context.Background(), u.Email, u.Password); err != nil {
		t.Fatalf("login: %v", err)
	}
	return u
}

// signInAdmin seeds an administrator and logs them in
func (f *fixture) signInAdmin(t *testing.T) domain.User {
	t.Helper()
	u := f.addUser(t, domain.User{ID: "adm", Username: "admin", Email: "admin@nextrig.in", Password: "admin123", Role: domain.RoleAdmin})
	if _, err := f.session.Login(context.Background(), u.Email, u.Password); err != nil {
		t.Fatalf("admin login: %v", err)
	}
	return u
}

func waitIntent(t *testing.T, in *remotesync.Intent) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := in.Wait(ctx); err != nil {
		t.Fatalf("intent %s: %v", in.Label(), err)
	}
}

func inr(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func validUPI() PaymentInput {
	return PaymentInput{Method: "UPI", TransactionID: "ABCDEFGHIJKLMNOPQRSTUVWXYZ012345678"}
}

func validAddress() domain.Address {
	return domain.Address{FullName: "Neo Anderson", Address: "101 Main St", City: "Pune", Pincode: "411001", MobileNumber: "9876543210"}
}

var errRemoteDown = errors.New("remote down")

// patchFailingUsers accepts reads but rejects every write
type patchFailingUsers struct {
	*repository.MemoryUsers
}

func (patchFailingUsers) Patch(ctx context.Context, id string, patch repository.UserPatch) (*domain.User, error) {
	return nil, errRemoteDown
}

func waitFailed(t *testing.T, in *remotesync.Intent) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := in.Wait(ctx); !errors.Is(err, errRemoteDown) {
		t.Fatalf("intent %s: expected remote failure, got %v", in.Label(), err)
	}
	if in.Status() != remotesync.StatusFailed {
		t.Fatalf("intent %s: status %s", in.Label(), in.Status())
	}
}

func (f *fixture) cachedUser(t *testing.T) *domain.User {
	t.Helper()
	u, err := f.cache.Load(context.Background())
	if err != nil || u == nil {
		t.Fatalf("load cache: %v", err)
	}
	return u
}
