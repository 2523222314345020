package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/httpapi"
	"storefront/internal/logger"
	"storefront/internal/repository"
	"storefront/internal/service"
)

type testEnv struct {
	store *repository.MemoryStore
	users *repository.MemoryUsers
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	store := repository.NewMemoryStore()
	users := repository.NewMemoryUsers(store)
	require.NoError(t, store.Create(ctx, &domain.Product{ID: "1", Name: "RTX 5090", Brand: "NVIDIA", Category: "GPU", Price: decimal.NewFromInt(1000)}))
	require.NoError(t, users.Create(ctx, &domain.User{ID: "u1", Username: "neo", Email: "neo@matrix.io", Password: "secret1", Role: domain.RoleUser}))
	require.NoError(t, users.Create(ctx, &domain.User{ID: "adm", Username: "admin", Email: "admin@nextrig.in", Password: "admin123", Role: domain.RoleAdmin}))
	require.NoError(t, users.Create(ctx, &domain.User{ID: "b1", Username: "smith", Email: "smith@matrix.io", Password: "agent99", Role: domain.RoleUser, Blocked: true}))

	srv := httptest.NewServer(httpapi.NewServer(users, store).Engine())
	t.Cleanup(srv.Close)

	t.Chdir(t.TempDir())
	t.Setenv("STOREFRONT_API_BASE_URL", srv.URL)
	t.Setenv("STOREFRONT_SESSION_PATH", filepath.Join(t.TempDir(), "session.json"))
	return &testEnv{store: store, users: users}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "storefront %v", args)
	return out
}

func TestCLI_ShoppingFlow(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	assert.Contains(t, mustRun(t, "whoami"), "Not logged in")
	_, err := run(t, "cart", "add", "1")
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)

	assert.Contains(t, mustRun(t, "login", "--email", "neo@matrix.io", "--password", "secret1"), "Welcome back, neo")
	assert.Contains(t, mustRun(t, "products", "--category", "GPU"), "RTX 5090")

	mustRun(t, "cart", "add", "1")
	mustRun(t, "cart", "add", "1")
	assert.Contains(t, mustRun(t, "cart"), "2/10")

	out := mustRun(t, "checkout", "--method", "cod",
		"--full-name", "Neo Anderson", "--address", "101 Main St", "--city", "Pune",
		"--pincode", "411001", "--mobile", "9876543210")
	assert.Contains(t, out, "Order placed successfully")
	assert.Contains(t, out, "Total: ₹2,015")

	u, err := env.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, u.Orders, 1)
	assert.Empty(t, u.Cart)
	assert.True(t, u.Address.IsComplete())
	orderID := u.Orders[0].ID

	assert.Contains(t, mustRun(t, "cart"), "Your cart is empty")
	assert.Contains(t, mustRun(t, "orders", "--status", "pending"), orderID)

	mustRun(t, "logout")
	mustRun(t, "login", "--email", "admin@nextrig.in", "--password", "admin123")
	assert.Contains(t, mustRun(t, "admin", "order-status", "u1", orderID, "cancelled"), "is now cancelled")
	_, err = run(t, "admin", "order-status", "u1", orderID, "shipped")
	assert.ErrorIs(t, err, service.ErrInvalidState)
	assert.Contains(t, mustRun(t, "admin", "dashboard"), "Revenue: ₹0")

	u, err = env.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.CancelledByAdmin, u.Orders[0].CancelledBy)
}

func TestCLI_ProfileUpdateKeepsUntouchedAddressFields(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	mustRun(t, "login", "--email", "neo@matrix.io", "--password", "secret1")
	mustRun(t, "profile", "update",
		"--full-name", "Neo A", "--address", "101 Main", "--city", "Pune",
		"--pincode", "411001", "--mobile", "9876543210")

	mustRun(t, "profile", "update", "--city", "Mumbai")
	u, err := env.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u.Address)
	assert.Equal(t, domain.Address{FullName: "Neo A", Address: "101 Main", City: "Mumbai", Pincode: "411001", MobileNumber: "9876543210"}, *u.Address)
	assert.Equal(t, "neo", u.Username)

	assert.Contains(t, mustRun(t, "checkout", "--quote", "--method", "cod"), "Ship to: Neo A, 101 Main, Mumbai 411001")

	mustRun(t, "cart", "add", "1")
	out := mustRun(t, "checkout", "--method", "cod", "--pincode", "400001")
	assert.Contains(t, out, "Order placed successfully")

	u, err = env.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, u.Orders, 1)
	assert.Equal(t, domain.Address{FullName: "Neo A", Address: "101 Main", City: "Mumbai", Pincode: "400001", MobileNumber: "9876543210"}, *u.Orders[0].ShippingAddress)
	assert.Equal(t, "411001", u.Address.Pincode, "address is only saved with --edit-address")
}

func TestCLI_BlockedLogin(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "login", "--email", "smith@matrix.io", "--password", "agent99")
	assert.ErrorIs(t, err, service.ErrAccountBlocked)
	assert.Contains(t, mustRun(t, "whoami"), "Not logged in")
}

func TestCLI_AdminProducts(t *testing.T) {
	env := setupEnv(t)
	mustRun(t, "login", "--email", "admin@nextrig.in", "--password", "admin123")

	out := mustRun(t, "admin", "product-add", "--name", "Ryzen 9", "--brand", "AMD", "--category", "CPU", "--price", "45999")
	assert.Contains(t, out, "added with id 2")
	_, err := run(t, "admin", "product-add", "--name", "ryzen 9", "--brand", "AMD", "--category", "CPU", "--price", "1")
	assert.ErrorIs(t, err, service.ErrDuplicateProduct)

	mustRun(t, "admin", "product-edit", "2", "--price", "42999", "--featured")
	p, err := env.store.GetByID(context.Background(), "2")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(42999)))
	assert.True(t, p.Featured)
	assert.Equal(t, "Ryzen 9", p.Name)

	assert.Contains(t, mustRun(t, "admin", "products", "--brand", "AMD"), "Page 1 of 1 (1 products)")
	mustRun(t, "admin", "product-delete", "2")
	_, err = env.store.GetByID(context.Background(), "2")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = run(t, "admin", "block", "adm")
	assert.ErrorIs(t, err, service.ErrProtectedAccount)
}

func TestServeAPI_StopsOnCancel(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Addr: "127.0.0.1:0"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- serveAPI(ctx, cfg, logger.Nop()) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeAPI_MissingSeed(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Addr: "127.0.0.1:0", Seed: filepath.Join(os.TempDir(), "does-not-exist.yaml")}}
	assert.Error(t, serveAPI(context.Background(), cfg, logger.Nop()))
}
