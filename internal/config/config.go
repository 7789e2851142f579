package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/tkingovr/headergate/internal/rule"
)

// File represents the top-level YAML gateway configuration.
type File struct {
	Version  int          `yaml:"version" json:"version"`
	Settings Settings     `yaml:"settings" json:"settings"`
	Routes   []RouteSpec  `yaml:"routes" json:"routes"`
	Clients  []ClientSpec `yaml:"clients" json:"clients"`
}

// Settings contains global gateway settings.
type Settings struct {
	ListenAddr string             `yaml:"listen_addr" json:"listen_addr"`
	AdminAddr  string             `yaml:"admin_addr" json:"admin_addr"`
	LogDir     string             `yaml:"log_dir" json:"log_dir"`
	OPAGuard   string             `yaml:"opa_guard,omitempty" json:"opa_guard,omitempty"`
	RateLimit  *RateLimitSettings `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`
}

// RateLimitSettings configures rate limiting.
type RateLimitSettings struct {
	Global   *RateLimitRule            `yaml:"global,omitempty" json:"global,omitempty"`
	PerRoute map[string]*RateLimitRule `yaml:"per_route,omitempty" json:"per_route,omitempty"`
}

// RateLimitRule defines a rate limit: max requests per time window.
type RateLimitRule struct {
	Max    int    `yaml:"max" json:"max"`
	Window string `yaml:"window" json:"window"`
}

// RouteSpec declares one gateway route. A route may require a header rule
// and is backed by exactly one of: an upstream to reverse-proxy to, a named
// client fetch, or a static response body.
type RouteSpec struct {
	Path        string      `yaml:"path" json:"path"`
	Require     *HeaderSpec `yaml:"require,omitempty" json:"require,omitempty"`
	Upstream    string      `yaml:"upstream,omitempty" json:"upstream,omitempty"`
	Client      string      `yaml:"client,omitempty" json:"client,omitempty"`
	Fetch       string      `yaml:"fetch,omitempty" json:"fetch,omitempty"`
	Respond     string      `yaml:"respond,omitempty" json:"respond,omitempty"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
}

// HeaderSpec is a header name/value pair in the configuration file.
type HeaderSpec struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Rule converts the spec into an immutable header rule.
func (h HeaderSpec) Rule() (rule.Rule, error) {
	return rule.New(h.Name, h.Value)
}

// ClientSpec declares one named outbound client.
type ClientSpec struct {
	Name    string       `yaml:"name" json:"name"`
	BaseURL string       `yaml:"base_url" json:"base_url"`
	Timeout string       `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Headers []HeaderSpec `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Rules converts the client's header specs into rules.
func (c ClientSpec) Rules() ([]rule.Rule, error) {
	rules := make([]rule.Rule, 0, len(c.Headers))
	for _, h := range c.Headers {
		r, err := h.Rule()
		if err != nil {
			return nil, fmt.Errorf("client %q header %q: %w", c.Name, h.Name, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Config is the runtime configuration for headergate.
type Config struct {
	File       *File
	Path       string
	ListenAddr string
	AdminAddr  string
	LogDir     string
}

// Load reads a gateway YAML file and produces a runtime Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := LoadBytes(data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// LoadBytes parses YAML data and produces a runtime Config.
func LoadBytes(data []byte) (*Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := validate(&f); err != nil {
		return nil, err
	}
	return fromFile(&f), nil
}

func fromFile(f *File) *Config {
	cfg := &Config{File: f}

	cfg.ListenAddr = f.Settings.ListenAddr
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	cfg.AdminAddr = f.Settings.AdminAddr
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = DefaultAdminAddr
	}

	cfg.LogDir = f.Settings.LogDir
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir()
	}
	cfg.LogDir = expandHome(cfg.LogDir)

	return cfg
}

// validate collects every problem in the file rather than stopping at the
// first, so a broken config can be fixed in one pass.
func validate(f *File) error {
	var result *multierror.Error

	if f.Version != 1 {
		result = multierror.Append(result, fmt.Errorf("unsupported config version: %d (expected 1)", f.Version))
	}

	// Bad windows must fail loudly here; the chain builder would otherwise
	// drop them and leave the route unlimited.
	if rl := f.Settings.RateLimit; rl != nil {
		if rl.Global != nil {
			if _, err := time.ParseDuration(rl.Global.Window); err != nil {
				result = multierror.Append(result, fmt.Errorf("rate limit: invalid global window %q", rl.Global.Window))
			}
		}
		for route, r := range rl.PerRoute {
			if _, err := time.ParseDuration(r.Window); err != nil {
				result = multierror.Append(result, fmt.Errorf("rate limit: route %q: invalid window %q", route, r.Window))
			}
		}
	}

	for i, route := range f.Routes {
		if route.Path == "" {
			result = multierror.Append(result, fmt.Errorf("route %d: path is required", i))
			continue
		}
		if !strings.HasPrefix(route.Path, "/") {
			result = multierror.Append(result, fmt.Errorf("route %q: path must start with /", route.Path))
		}
		if route.Require != nil {
			if _, err := route.Require.Rule(); err != nil {
				result = multierror.Append(result, fmt.Errorf("route %q: %w", route.Path, err))
			}
		}
		backings := 0
		if route.Upstream != "" {
			backings++
			if u, err := url.Parse(route.Upstream); err != nil || !u.IsAbs() {
				result = multierror.Append(result, fmt.Errorf("route %q: upstream must be an absolute URL", route.Path))
			}
		}
		if route.Client != "" {
			backings++
			if route.Fetch == "" {
				result = multierror.Append(result, fmt.Errorf("route %q: client routes need a fetch path", route.Path))
			}
		} else if route.Fetch != "" {
			result = multierror.Append(result, fmt.Errorf("route %q: fetch requires a client", route.Path))
		}
		if route.Respond != "" {
			backings++
		}
		if backings > 1 {
			result = multierror.Append(result, fmt.Errorf("route %q: upstream, client, and respond are mutually exclusive", route.Path))
		}
	}

	seen := map[string]bool{}
	for i, client := range f.Clients {
		if client.Name == "" {
			result = multierror.Append(result, fmt.Errorf("client %d: name is required", i))
			continue
		}
		if seen[client.Name] {
			result = multierror.Append(result, fmt.Errorf("client %q: duplicate name", client.Name))
		}
		seen[client.Name] = true

		if client.BaseURL == "" {
			result = multierror.Append(result, fmt.Errorf("client %q: base_url is required", client.Name))
		} else if u, err := url.Parse(client.BaseURL); err != nil || !u.IsAbs() {
			result = multierror.Append(result, fmt.Errorf("client %q: base_url must be an absolute URL", client.Name))
		}

		if _, err := client.Rules(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	// Client-backed routes must reference a declared client
	for _, route := range f.Routes {
		if route.Client != "" && !seen[route.Client] {
			result = multierror.Append(result, fmt.Errorf("route %q: unknown client %q", route.Path, route.Client))
		}
	}

	return result.ErrorOrNil()
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfig returns a config with defaults for when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		File:       &File{Version: 1},
		ListenAddr: DefaultListenAddr,
		AdminAddr:  DefaultAdminAddr,
		LogDir:     expandHome(DefaultLogDir()),
	}
}

// MarshalYAML serializes the file for display/export.
func (c *Config) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(c.File)
}
