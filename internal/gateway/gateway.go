// Package gateway hosts the guarded routes and the public routes backed by
// named clients. Route guards are resolved once at registration time from
// the static table; request-time work is limited to running the route's
// inbound filter chain.
package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkingovr/headergate/api"
	"github.com/tkingovr/headergate/internal/client"
	"github.com/tkingovr/headergate/internal/config"
	"github.com/tkingovr/headergate/internal/filter"
	"github.com/tkingovr/headergate/internal/guard"
	"github.com/tkingovr/headergate/internal/rule"
)

// Config wires the gateway's collaborators.
type Config struct {
	Table    *guard.Table
	Registry *client.Registry
	ChainCfg filter.ChainConfig
	Logger   *slog.Logger
}

// Gateway is the HTTP host for guarded and client-backed routes.
type Gateway struct {
	router   chi.Router
	table    *guard.Table
	registry *client.Registry
	chainCfg filter.ChainConfig
	logger   *slog.Logger
}

// New creates a gateway with an empty route set.
func New(cfg Config) *Gateway {
	g := &Gateway{
		router:   chi.NewRouter(),
		table:    cfg.Table,
		registry: cfg.Registry,
		chainCfg: cfg.ChainCfg,
		logger:   cfg.Logger,
	}
	g.router.Use(requestID)
	g.router.Use(requestLogger(g.logger))
	return g
}

// Handle registers a handler under pattern, wrapped with the route's inbound
// filter chain. The required rule, if any, is looked up once here, not per
// request.
func (g *Gateway) Handle(pattern string, h http.Handler) {
	var rules []rule.Rule
	if g.table != nil {
		if r, ok := g.table.Lookup(pattern); ok {
			rules = append(rules, r)
		}
	}
	chain := filter.BuildInboundChain(g.chainCfg, rules...)
	g.router.Handle(pattern, g.filtered(pattern, chain, h))
}

// HandleFunc registers a handler function under pattern.
func (g *Gateway) HandleFunc(pattern string, h http.HandlerFunc) {
	g.Handle(pattern, h)
}

func (g *Gateway) filtered(pattern string, chain *filter.Chain, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ex := filter.NewExchange(api.DirectionInbound, pattern, r.Header)
		ex.Method = r.Method

		if err := chain.Process(r.Context(), ex); err != nil {
			g.logger.Error("filter chain error", "route", pattern, "error", err)
			http.Error(w, "internal filter error", http.StatusInternalServerError)
			return
		}

		if ex.Halted {
			g.logger.Warn("request halted",
				"route", pattern,
				"rule", ex.Rule,
				"status", ex.Status,
			)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(ex.Status)
			io.WriteString(w, ex.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Apply registers every route declared in the configuration file.
func (g *Gateway) Apply(f *config.File) error {
	for _, route := range f.Routes {
		switch {
		case route.Upstream != "":
			h, err := NewUpstreamHandler(route.Upstream, g.logger)
			if err != nil {
				return err
			}
			g.Handle(route.Path, h)
		case route.Client != "":
			g.Handle(route.Path, NewClientHandler(g.registry, route.Client, route.Fetch, g.logger))
		case route.Respond != "":
			g.Handle(route.Path, NewStaticHandler(route.Respond))
		default:
			g.Handle(route.Path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
		}
	}
	return nil
}

// Handler returns the gateway's HTTP handler for embedding in tests or other
// servers.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// ListenAndServe starts the gateway HTTP server.
func (g *Gateway) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: g.router,
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	g.logger.Info("starting gateway", "listen", addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
