package filter

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tkingovr/headergate/api"
)

// RateLimitConfig defines rate limiting rules.
type RateLimitConfig struct {
	// Global is the global rate limit (requests per window across all routes).
	Global *RateLimit

	// PerRoute maps route patterns to per-route rate limits.
	PerRoute map[string]*RateLimit
}

// RateLimit defines a single rate limit: max requests per time window.
type RateLimit struct {
	Max    int
	Window time.Duration
}

// slidingWindow tracks request timestamps for rate limiting.
type slidingWindow struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// RateLimitFilter enforces per-route and global rate limits using a sliding window.
type RateLimitFilter struct {
	config  RateLimitConfig
	mu      sync.RWMutex
	windows map[string]*slidingWindow // key: route pattern or "_global"
}

// NewRateLimitFilter creates a new rate limit filter.
func NewRateLimitFilter(config RateLimitConfig) *RateLimitFilter {
	return &RateLimitFilter{
		config:  config,
		windows: make(map[string]*slidingWindow),
	}
}

func (f *RateLimitFilter) Name() string { return "rate_limit" }

func (f *RateLimitFilter) Process(_ context.Context, ex *Exchange) error {
	// Only rate limit inbound exchanges
	if ex.Direction != api.DirectionInbound {
		return nil
	}
	if ex.Halted {
		return nil
	}

	now := time.Now()

	// Check per-route limit
	if ex.Route != "" {
		if limit, ok := f.config.PerRoute[ex.Route]; ok {
			if !f.allow(ex.Route, limit, now) {
				ex.Outcome = api.OutcomeForbid
				ex.Rule = "rate_limit:" + ex.Route
				ex.Message = fmt.Sprintf("rate limit exceeded for route %q: max %d per %s",
					ex.Route, limit.Max, limit.Window)
				ex.Status = http.StatusTooManyRequests
				ex.Halted = true
				return nil
			}
		}
	}

	// Check global limit
	if f.config.Global != nil {
		if !f.allow("_global", f.config.Global, now) {
			ex.Outcome = api.OutcomeForbid
			ex.Rule = "rate_limit:global"
			ex.Message = fmt.Sprintf("global rate limit exceeded: max %d per %s",
				f.config.Global.Max, f.config.Global.Window)
			ex.Status = http.StatusTooManyRequests
			ex.Halted = true
			return nil
		}
	}

	return nil
}

// allow checks if a request is allowed under the given rate limit.
func (f *RateLimitFilter) allow(key string, limit *RateLimit, now time.Time) bool {
	f.mu.Lock()
	w, ok := f.windows[key]
	if !ok {
		w = &slidingWindow{}
		f.windows[key] = w
	}
	f.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	// Remove expired timestamps
	cutoff := now.Add(-limit.Window)
	valid := 0
	for _, ts := range w.timestamps {
		if ts.After(cutoff) {
			w.timestamps[valid] = ts
			valid++
		}
	}
	w.timestamps = w.timestamps[:valid]

	// Check limit
	if len(w.timestamps) >= limit.Max {
		return false
	}

	// Record this request
	w.timestamps = append(w.timestamps, now)
	return true
}

// Reset clears all rate limit windows (useful for testing).
func (f *RateLimitFilter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = make(map[string]*slidingWindow)
}
