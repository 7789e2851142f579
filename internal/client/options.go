package client

import (
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient allows providing a custom http.Client. Its transport is
// still wrapped with the client's outbound filter chain.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.httpClient = hc
		}
		return nil
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.httpClient.Timeout = d
		return nil
	}
}
