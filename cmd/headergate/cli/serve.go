package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tkingovr/headergate/internal/audit"
	"github.com/tkingovr/headergate/internal/client"
	"github.com/tkingovr/headergate/internal/config"
	"github.com/tkingovr/headergate/internal/filter"
	"github.com/tkingovr/headergate/internal/gateway"
	"github.com/tkingovr/headergate/internal/guard"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway and the admin API",
	Long: `Start the gateway with the routes, guards, and named clients declared
in the config file, plus the admin API on a separate loopback listener.`,
	Example: `  headergate serve -c gateway.yaml
  headergate serve -c gateway.yaml -v`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("--config/-c is required for serve command")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	engine, table, err := buildGuards(cfg)
	if err != nil {
		return err
	}

	auditStore, err := audit.NewJSONLStore(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("creating audit store: %w", err)
	}
	defer auditStore.Close()

	chainCfg := filter.ChainConfig{
		Store:  auditStore,
		Logger: logger,
		Guard:  engine,
	}
	if rl := filter.RateLimitConfigFromSettings(cfg.File.Settings.RateLimit); rl != nil {
		chainCfg.RateLimit = filter.NewRateLimitFilter(*rl)
	}

	registry, err := client.BuildRegistry(cfg, chainCfg)
	if err != nil {
		return fmt.Errorf("building client registry: %w", err)
	}

	gw := gateway.New(gateway.Config{
		Table:    table,
		Registry: registry,
		ChainCfg: chainCfg,
		Logger:   logger,
	})
	if err := gw.Apply(cfg.File); err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	// The admin API serves check requests against the same guards the
	// gateway enforces: the route table first, then the Rego guard, matching
	// the inbound chain's order.
	var adminEngine guard.Engine = table
	if engine != nil {
		adminEngine = guard.NewSequence(table, engine)
	}
	admin := gateway.NewAdminServer(cfg.AdminAddr, auditStore, adminEngine, logger)
	go func() {
		if err := admin.ListenAndServe(ctx); err != nil {
			logger.Error("admin server error", "error", err)
		}
	}()

	logger.Info("starting gateway",
		"listen", cfg.ListenAddr,
		"admin", cfg.AdminAddr,
		"routes", len(cfg.File.Routes),
		"clients", len(registry.Names()),
	)

	return gw.ListenAndServe(ctx, cfg.ListenAddr)
}

// buildGuards produces the optional Rego engine and the static route table
// from configuration. The table always exists; the engine is nil unless an
// OPA guard file is configured.
func buildGuards(cfg *config.Config) (guard.Engine, *guard.Table, error) {
	builder := guard.NewTableBuilder()
	for _, route := range cfg.File.Routes {
		if route.Require == nil {
			continue
		}
		r, err := route.Require.Rule()
		if err != nil {
			return nil, nil, fmt.Errorf("route %q: %w", route.Path, err)
		}
		builder.Require(route.Path, r)
	}
	table := builder.Build()

	if cfg.File.Settings.OPAGuard == "" {
		return nil, table, nil
	}

	engine, err := guard.NewOPAEngine(cfg.File.Settings.OPAGuard)
	if err != nil {
		return nil, nil, fmt.Errorf("creating OPA guard: %w", err)
	}
	return engine, table, nil
}
