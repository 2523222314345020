package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "storefront/docs"
	"storefront/internal/config"
	"storefront/internal/httpapi"
	"storefront/internal/logger"
	"storefront/internal/repository"
)

// @title Storefront collection API
// @version 1.0
// @description Development users/products collection API backing the storefront client.
// @host localhost:3000
// @BasePath /
func newAPICmd(opts *rootOptions) *cobra.Command {
	var addr, seed string
	c := &cobra.Command{
		Use:   "api",
		Short: "Run the development collection API",
		Long: `Run an in-memory users/products collection API with the query and patch
semantics the storefront client expects. Swagger UI is served at /swagger/index.html.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if seed != "" {
				cfg.Server.Seed = seed
			}
			log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return serveAPI(ctx, cfg, log)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	c.Flags().StringVar(&seed, "seed", "", "YAML seed file (overrides server.seed)")
	return c
}

func serveAPI(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store := repository.NewMemoryStore()
	if cfg.Server.Seed != "" {
		s, err := repository.LoadSeedFile(ctx, store, cfg.Server.Seed)
		if err != nil {
			return err
		}
		log.Info("seed loaded", "products", len(s.Products), "users", len(s.Users))
	}

	srv := httpapi.NewServer(repository.NewMemoryUsers(store), store)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("HTTP server stopped")
	return nil
}
