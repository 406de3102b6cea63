// Package cli implements shopifyctl.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"shopifyapi/internal/shop"
	"shopifyapi/pkg/config"
	"shopifyapi/pkg/db"
	"shopifyapi/pkg/shopify"
)

var Version = "dev"

type app struct {
	cfg    config.Config
	logger *slog.Logger

	shop       string
	token      string
	baseURL    string
	apiVersion string
	strict     bool
	jsonLogs   bool
}

// NewRootCommand creates the shopifyctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "shopifyctl",
		Short:         "Work with a shop through the Shopify Admin REST API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.jsonLogs {
				a.cfg.Log.Format = "json"
			}
			a.logger = newLogger(cmd.ErrOrStderr(), a.cfg.Log)
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.shop, "shop", "", "shop name or myshopify domain (default $SHOPIFY_DOMAIN)")
	f.StringVar(&a.token, "token", "", "Admin API access token (default $SHOPIFY_ACCESS_TOKEN, then the shops table)")
	f.StringVar(&a.baseURL, "base-url", "", "send requests here instead of the shop host")
	f.StringVar(&a.apiVersion, "api-version", "", "Admin API version (default $SHOPIFY_API_VERSION)")
	f.BoolVar(&a.strict, "strict", false, "fail on reads of absent attributes")
	f.BoolVar(&a.jsonLogs, "json-logs", false, "log as JSON")

	root.AddCommand(
		a.newGetCommand(),
		a.newListCommand(),
		a.newCountCommand(),
		a.newFieldCommand(),
		a.newMetafieldsCommand(),
		a.newShopCommand(),
		a.newShopsCommand(),
		a.newMigrateCommand(),
		a.newServeCommand(),
		a.newWebhookCommand(),
		a.newFakeCommand(),
	)
	return root
}

// Execute runs shopifyctl and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		// Add source location in debug mode
		AddSource: cfg.Level <= slog.LevelDebug,
	}
	// JSON for production, text for development
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) options() shopify.Options {
	version := a.apiVersion
	if version == "" {
		version = a.cfg.Shopify.APIVersion
	}
	return shopify.Options{
		APIVersion: version,
		UserAgent:  a.cfg.Shopify.UserAgent,
		Timeout:    a.cfg.Shopify.Timeout,
		Strict:     a.strict || a.cfg.Shopify.Strict,
		BaseURL:    a.baseURL,
		Logger:     a.logger,
	}
}

// manager picks the shop from flags or config. Without a token the
// credential comes from the shops table.
func (a *app) manager(ctx context.Context) (*shopify.Manager, error) {
	domain := firstNonEmpty(a.shop, a.cfg.Shopify.Domain)
	if domain == "" {
		return nil, fmt.Errorf("no shop given: pass --shop or set SHOPIFY_DOMAIN")
	}
	if token := firstNonEmpty(a.token, a.cfg.Shopify.AccessToken); token != "" {
		return shopify.Init(domain, token, a.options())
	}

	pool, err := db.Open(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("no token given and the shops table is unavailable: %w", err)
	}
	defer pool.Close()
	return shopify.ForShop(ctx, shop.NewRepository(pool), domain, a.options())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
