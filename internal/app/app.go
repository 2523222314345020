// Package app is the explicit application-state container: it owns the
// session cache, the remote sync queue and every service built on them.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/shopspring/decimal"

	"storefront/internal/apiclient"
	"storefront/internal/config"
	"storefront/internal/localstore"
	"storefront/internal/logger"
	"storefront/internal/remotesync"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// Deps are the ports the container is assembled from
type Deps struct {
	Users    repository.UserRepository
	Products repository.ProductRepository
	Cache    localstore.Cache
}

type App struct {
	Config *config.Config
	Log    logger.Logger

	Session     *service.SessionService
	Cart        *service.CartService
	Wishlist    *service.WishlistService
	Checkout    *service.CheckoutService
	Orders      *service.OrderService
	AdminOrders *service.AdminOrderService
	AdminUsers  *service.AdminUserService
	Products    *service.ProductService
	Catalog     *service.CatalogService
	Dashboard   *service.DashboardService

	queue   *remotesync.Queue
	closers []func() error
}

// New connects to the collection API and the configured session cache
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	client := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout)
	deps := Deps{Users: client.Users(), Products: client.Products()}

	var closers []func() error
	switch cfg.Session.Backend {
	case config.BackendRedis:
		rc, err := localstore.NewRedisCache(ctx, cfg.Session.RedisURL, cfg.Session.Key)
		if err != nil {
			return nil, fmt.Errorf("session cache: %w", err)
		}
		deps.Cache = rc
		closers = append(closers, rc.Close)
	default:
		deps.Cache = localstore.NewFileCache(filepath.Clean(cfg.Session.Path))
	}

	a, err := Assemble(ctx, cfg, log, deps)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}
	a.closers = append(a.closers, closers...)
	return a, nil
}

// Assemble wires the services over deps and restores the cached session
func Assemble(ctx context.Context, cfg *config.Config, log logger.Logger, deps Deps) (*App, error) {
	queue := remotesync.NewQueue(log.WithField("component", "remotesync"))
	session := service.NewSessionService(deps.Users, deps.Cache, log.WithField("component", "session"))
	cart := service.NewCartService(session, deps.Users, queue)
	wishlist := service.NewWishlistService(session, deps.Users, queue)

	a := &App{
		Config:      cfg,
		Log:         log,
		Session:     session,
		Cart:        cart,
		Wishlist:    wishlist,
		Checkout:    service.NewCheckoutService(session, cart, deps.Users, log.WithField("component", "checkout"), decimal.NewFromFloat(cfg.Checkout.CODFee)),
		Orders:      service.NewOrderService(session, deps.Users, log.WithField("component", "orders")),
		AdminOrders: service.NewAdminOrderService(session, deps.Users, log.WithField("component", "admin")),
		AdminUsers:  service.NewAdminUserService(session, deps.Users, log.WithField("component", "admin")),
		Products:    service.NewProductService(session, deps.Products, log.WithField("component", "admin")),
		Catalog:     service.NewCatalogService(deps.Products, cart, wishlist),
		Dashboard:   service.NewDashboardService(session, deps.Users, deps.Products),
		queue:       queue,
	}
	if err := session.Hydrate(ctx); err != nil {
		_ = queue.Close(ctx)
		return nil, err
	}
	return a, nil
}

// Close waits for queued remote writes, then releases the cache
func (a *App) Close(ctx context.Context) error {
	err := a.queue.Close(ctx)
	for _, c := range a.closers {
		err = errors.Join(err, c())
	}
	return err
}
