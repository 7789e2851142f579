package filter

import (
	"log/slog"
	"time"

	"github.com/tkingovr/headergate/internal/audit"
	"github.com/tkingovr/headergate/internal/config"
	"github.com/tkingovr/headergate/internal/guard"
	"github.com/tkingovr/headergate/internal/rule"
)

// ChainConfig holds the shared pieces for building filter chains.
type ChainConfig struct {
	Store  audit.Store
	Logger *slog.Logger

	// Guard is an optional engine for Rego route guards.
	Guard guard.Engine

	// RateLimit is a single rate limit filter shared by every inbound
	// chain, so the global window spans all routes. Nil disables limiting.
	RateLimit *RateLimitFilter
}

// BuildInboundChain constructs the inbound chain for one guarded route.
// Validation runs first so rule denials take precedence over rate limiting;
// audit is always last so halted exchanges are still recorded.
func BuildInboundChain(cfg ChainConfig, rules ...rule.Rule) *Chain {
	var filters []Filter
	for _, r := range rules {
		filters = append(filters, NewValidateFilter(r))
	}
	if cfg.Guard != nil {
		filters = append(filters, NewGuardFilter(cfg.Guard))
	}
	if cfg.RateLimit != nil {
		filters = append(filters, cfg.RateLimit)
	}
	filters = append(filters, NewAuditFilter(cfg.Store))
	return NewChain(cfg.Logger, filters...)
}

// RateLimitConfigFromSettings converts config rate limit settings to filter config.
func RateLimitConfigFromSettings(settings *config.RateLimitSettings) *RateLimitConfig {
	if settings == nil {
		return nil
	}

	cfg := &RateLimitConfig{
		PerRoute: make(map[string]*RateLimit),
	}

	if settings.Global != nil {
		d, err := time.ParseDuration(settings.Global.Window)
		if err == nil {
			cfg.Global = &RateLimit{Max: settings.Global.Max, Window: d}
		}
	}

	for route, r := range settings.PerRoute {
		d, err := time.ParseDuration(r.Window)
		if err == nil {
			cfg.PerRoute[route] = &RateLimit{Max: r.Max, Window: d}
		}
	}

	return cfg
}

// BuildOutboundChain constructs the outbound chain for one named client.
// Each call builds fresh filter instances, so clients never share state.
func BuildOutboundChain(cfg ChainConfig, rules ...rule.Rule) *Chain {
	var filters []Filter
	for _, r := range rules {
		filters = append(filters, NewInjectFilter(r))
	}
	filters = append(filters, NewAuditFilter(cfg.Store))
	return NewChain(cfg.Logger, filters...)
}
