package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/tkingovr/headergate/internal/config"
	"github.com/tkingovr/headergate/internal/filter"
)

// Registry maps logical names to configured clients. Entries are fully
// independent: each client owns its own filter chain, so configuration never
// leaks between names.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register adds a client under its name. Duplicate names are rejected.
func (r *Registry) Register(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c.Name()]; ok {
		return fmt.Errorf("registry: client %q already registered", c.Name())
	}
	r.clients[c.Name()] = c
	return nil
}

// Lookup returns the client registered under name.
func (r *Registry) Lookup(name string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[name]
	return c, ok
}

// Names returns the registered client names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// BuildRegistry constructs the registry from configuration. Each client gets
// a fresh outbound chain of one inject filter per configured header, with
// audit last.
func BuildRegistry(cfg *config.Config, chainCfg filter.ChainConfig) (*Registry, error) {
	registry := NewRegistry()

	for _, spec := range cfg.File.Clients {
		rules, err := spec.Rules()
		if err != nil {
			return nil, err
		}

		var options []Option
		if spec.Timeout != "" {
			d, err := time.ParseDuration(spec.Timeout)
			if err != nil {
				return nil, fmt.Errorf("client %q: invalid timeout %q: %w", spec.Name, spec.Timeout, err)
			}
			options = append(options, WithTimeout(d))
		}

		chain := filter.BuildOutboundChain(chainCfg, rules...)
		c, err := New(spec.Name, spec.BaseURL, chain, options...)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
