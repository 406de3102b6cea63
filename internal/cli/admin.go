package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shopifyapi/internal/fakeshop"
	"shopifyapi/internal/httpapi"
	"shopifyapi/internal/shop"
	"shopifyapi/internal/webhook"
	"shopifyapi/pkg/db"
	"shopifyapi/pkg/shopify"
)

func (a *app) newShopsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shops",
		Short: "Manage the access tokens stored for installed shops",
	}
	cmd.AddCommand(a.newShopsAddCommand(), a.newShopsRemoveCommand())
	return cmd
}

func (a *app) newShopsAddCommand() *cobra.Command {
	var scopes string
	cmd := &cobra.Command{
		Use:   "add <shop> <access-token>",
		Short: "Store or replace the access token of a shop",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, err := shopify.NormalizeShopDomain(args[0])
			if err != nil {
				return err
			}
			return a.withShops(cmd.Context(), func(repo *shop.Repository) error {
				s, err := repo.Upsert(cmd.Context(), domain, args[1], scopes)
				if err != nil {
					return err
				}
				a.logger.Info("shop stored", "shop", s.Domain, "id", s.ID)
				_, err = fmt.Fprintln(cmd.OutOrStdout(), s.Domain)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&scopes, "scopes", "", "granted scopes, comma separated")
	return cmd
}

func (a *app) newShopsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <shop>",
		Short: "Forget the access token of a shop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, err := shopify.NormalizeShopDomain(args[0])
			if err != nil {
				return err
			}
			return a.withShops(cmd.Context(), func(repo *shop.Repository) error {
				if err := repo.DeleteByDomain(cmd.Context(), domain); err != nil {
					return err
				}
				a.logger.Info("shop removed", "shop", domain)
				return nil
			})
		},
	}
}

func (a *app) withShops(ctx context.Context, fn func(repo *shop.Repository) error) error {
	pool, err := db.Open(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer pool.Close()
	return fn(shop.NewRepository(pool))
}

func (a *app) newMigrateCommand() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Uses DIRECT_URL if set.
			if err := db.Migrate(a.cfg.MigrationsPath, a.cfg, down); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if down {
				a.logger.Info("migrations rolled back")
			} else {
				a.logger.Info("migrations applied", "path", a.cfg.MigrationsPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll every migration back")
	return cmd
}

func (a *app) newFakeCommand() *cobra.Command {
	var (
		addr  string
		token string
	)
	cmd := &cobra.Command{
		Use:   "fake",
		Short: "Serve an in-memory Admin API for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fake := fakeshop.New(a.logger)
			fake.Token = token
			srv := &http.Server{
				Addr:              addr,
				Handler:           fake.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(ctx, srv, a.logger.With("server", "fake"))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8090", "listen address")
	cmd.Flags().StringVar(&token, "require-token", "", "access token to require (any token when empty)")
	return cmd
}

func (a *app) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the app server: OAuth install, webhooks and the shop-scoped api",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pool, err := db.Open(ctx, a.cfg)
			if err != nil {
				return fmt.Errorf("db open: %w", err)
			}
			defer pool.Close()

			router := httpapi.NewRouter(httpapi.Dependencies{
				Cfg:     a.cfg,
				Shops:   shop.NewRepository(pool),
				Events:  webhook.NewRepository(pool),
				Options: a.options(),
				Logger:  a.logger,
			})
			srv := &http.Server{
				Addr:              a.cfg.HTTPAddr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(ctx, srv, a.logger.With("server", "app"))
		},
	}
}

func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
