package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/localstore"
	"storefront/internal/logger"
	"storefront/internal/repository"
)

func testDeps(t *testing.T) (Deps, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	cache := localstore.NewFileCache(filepath.Join(t.TempDir(), "session.json"))
	return Deps{Users: repository.NewMemoryUsers(store), Products: store, Cache: cache}, store
}

func testConfig() *config.Config {
	return &config.Config{Checkout: config.CheckoutConfig{CODFee: 15}}
}

func TestAssemble_SessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	deps, store := testDeps(t)
	users := repository.NewMemoryUsers(store)
	require.NoError(t, users.Create(ctx, &domain.User{ID: "u1", Username: "neo", Email: "neo@matrix.io", Password: "secret1", Role: domain.RoleUser}))
	p := domain.Product{Name: "RTX 5090", Price: decimal.NewFromInt(1000)}
	require.NoError(t, store.Create(ctx, &p))

	a, err := Assemble(ctx, testConfig(), logger.Nop(), deps)
	require.NoError(t, err)
	_, err = a.Session.Login(ctx, "neo@matrix.io", "secret1")
	require.NoError(t, err)
	_, err = a.Cart.AddToCart(ctx, p)
	require.NoError(t, err)

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, a.Close(closeCtx))

	// a second container over the same cache restores identity and cart
	b, err := Assemble(ctx, testConfig(), logger.Nop(), deps)
	require.NoError(t, err)
	defer b.Close(closeCtx)
	assert.Equal(t, "u1", b.Session.UserID())
	assert.Equal(t, 1, b.Cart.Count())

	remote, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, remote.Cart, 1)
}

func TestAssemble_CODFeeFromConfig(t *testing.T) {
	ctx := context.Background()
	deps, _ := testDeps(t)
	cfg := testConfig()
	cfg.Checkout.CODFee = 40

	a, err := Assemble(ctx, cfg, logger.Nop(), deps)
	require.NoError(t, err)
	defer a.Close(ctx)
	q := a.Checkout.Quote(domain.PaymentCOD)
	assert.True(t, q.Fee.Equal(decimal.NewFromInt(40)), "fee %s", q.Fee)
}
