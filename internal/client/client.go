// Package client implements named outbound HTTP clients. A named client is a
// reusable binding of a base URL and an ordered outbound filter chain; every
// request sent through it passes the chain before transmission.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tkingovr/headergate/internal/filter"
)

// DefaultTimeout bounds requests of clients with no configured timeout.
const DefaultTimeout = 30 * time.Second

// Response is the relevant slice of an upstream response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client is a pre-configured outbound HTTP client. The configuration is
// immutable after New, so a Client is safe for concurrent use.
type Client struct {
	name       string
	baseURL    *url.URL
	httpClient *http.Client
	chain      *filter.Chain
}

// New creates a named client. The outbound chain runs inside the client's
// transport, so every request through the client is filtered, including ones
// not built by Get.
func New(name, baseURL string, chain *filter.Chain, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client %q: parsing base URL: %w", name, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("client %q: base URL must be absolute, got %q", name, baseURL)
	}

	c := &Client{
		name:       name,
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		chain:      chain,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, fmt.Errorf("client %q: %w", name, err)
		}
	}

	// Wrap the transport last so a caller-supplied http.Client is filtered too.
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.httpClient.Transport = &filterTransport{name: name, base: base, chain: chain}

	return c, nil
}

// Name returns the client's registry name.
func (c *Client) Name() string { return c.name }

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Get performs a GET against the base URL joined with relPath, applying the
// client's outbound filters, and returns the upstream status and body.
func (c *Client) Get(ctx context.Context, relPath string) (*Response, error) {
	target := c.baseURL.JoinPath(relPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("client %q: building request: %w", c.name, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client %q: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client %q: reading response body: %w", c.name, err)
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}, nil
}
