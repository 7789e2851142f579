package gateway

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/tkingovr/headergate/internal/client"
)

// NewStaticHandler serves a fixed plain-text body.
func NewStaticHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, body)
	})
}

// NewClientHandler serves a route by fetching a path through a named client
// and relaying the upstream status and body. The client is resolved at
// request time so the registry can be populated after route registration.
func NewClientHandler(registry *client.Registry, name, fetch string, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := registry.Lookup(name)
		if !ok {
			logger.Error("named client not registered", "client", name)
			http.Error(w, fmt.Sprintf("client %q not registered", name), http.StatusBadGateway)
			return
		}

		resp, err := c.Get(r.Context(), fetch)
		if err != nil {
			logger.Error("client fetch failed", "client", name, "fetch", fetch, "error", err)
			http.Error(w, "upstream fetch failed", http.StatusBadGateway)
			return
		}

		if ct := resp.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(resp.Status)
		w.Write(resp.Body)
	})
}

// NewUpstreamHandler reverse-proxies a route to a fixed upstream URL.
func NewUpstreamHandler(target string, logger *slog.Logger) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL: %w", err)
	}

	rp := httputil.NewSingleHostReverseProxy(u)
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream error", "error", err, "url", r.URL.String())
		http.Error(w, "upstream error: "+err.Error(), http.StatusBadGateway)
	}

	return rp, nil
}
