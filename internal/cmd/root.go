package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/telemetry"
)

type rootOptions struct {
	configPath string
}

// NewRootCmd builds the full command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "storefront",
		Short: "NextRig storefront client",
		Long: `storefront drives the NextRig shop from the terminal: browse the catalog,
keep a cart and a wishlist, check out and follow orders. Administrators can
manage products, users and order statuses.

The signed-in session is cached locally between invocations. The api command
runs a development collection API the client can talk to.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./config.yaml, ./deploy/config.yaml, $HOME/.storefront/config.yaml)")

	root.AddCommand(
		newAPICmd(opts),
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newProfileCmd(opts),
		newProductsCmd(opts),
		newProductCmd(opts),
		newCartCmd(opts),
		newWishlistCmd(opts),
		newCheckoutCmd(opts),
		newOrdersCmd(opts),
		newAdminCmd(opts),
	)
	return root
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type appRunFunc func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error

// withApp loads config, starts telemetry and the application container,
// runs fn and then drains pending remote writes.
func withApp(opts *rootOptions, fn appRunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level)

		shutdown, err := telemetry.Setup(cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			if serr := shutdown(context.Background()); serr != nil {
				log.Warn("telemetry shutdown failed", "error", serr)
			}
		}()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if cerr := a.Close(closeCtx); cerr != nil && err == nil {
				err = fmt.Errorf("failed to flush pending changes: %w", cerr)
			}
		}()
		return fn(ctx, cmd, a, args)
	}
}
