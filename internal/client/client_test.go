package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkingovr/headergate/internal/audit"
	"github.com/tkingovr/headergate/internal/config"
	"github.com/tkingovr/headergate/internal/filter"
	"github.com/tkingovr/headergate/internal/rule"
)

func testChainConfig(t *testing.T) filter.ChainConfig {
	t.Helper()
	store, err := audit.NewJSONLStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return filter.ChainConfig{
		Store:  store,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func mustRule(t *testing.T, name, value string) rule.Rule {
	t.Helper()
	r, err := rule.New(name, value)
	require.NoError(t, err)
	return r
}

func TestClient_GetInjectsHeader(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("custom-header") != "a" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		io.WriteString(w, "a")
	}))
	defer backend.Close()

	cfg := testChainConfig(t)
	chain := filter.BuildOutboundChain(cfg, mustRule(t, "custom-header", "a"))

	c, err := New("a", backend.URL, chain)
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "a", string(resp.Body))
}

func TestClient_SingleHeaderEntry(t *testing.T) {
	var values []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values = r.Header.Values("Custom-Header")
	}))
	defer backend.Close()

	cfg := testChainConfig(t)
	// Two inject filters with the same rule must still produce one entry.
	r := mustRule(t, "custom-header", "a")
	chain := filter.BuildOutboundChain(cfg, r, r)

	c, err := New("a", backend.URL, chain)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, values)
}

func TestClient_JoinsBaseAndRelativePath(t *testing.T) {
	var gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer backend.Close()

	cfg := testChainConfig(t)
	c, err := New("a", backend.URL+"/internal", filter.BuildOutboundChain(cfg))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "/internal/a", gotPath)
}

func TestClient_InvalidBaseURL(t *testing.T) {
	cfg := testChainConfig(t)
	_, err := New("a", "not-a-url", filter.BuildOutboundChain(cfg))
	require.Error(t, err)
}

func TestClient_FiltersCustomHTTPClient(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.Header.Get("custom-header"))
	}))
	defer backend.Close()

	cfg := testChainConfig(t)
	chain := filter.BuildOutboundChain(cfg, mustRule(t, "custom-header", "a"))

	c, err := New("a", backend.URL, chain, WithHTTPClient(&http.Client{}))
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "a", string(resp.Body))
}

func TestRegistry_DuplicateName(t *testing.T) {
	cfg := testChainConfig(t)
	registry := NewRegistry()

	a, err := New("a", "http://127.0.0.1:1", filter.BuildOutboundChain(cfg))
	require.NoError(t, err)
	require.NoError(t, registry.Register(a))

	dup, err := New("a", "http://127.0.0.1:2", filter.BuildOutboundChain(cfg))
	require.NoError(t, err)
	assert.Error(t, registry.Register(dup))
}

func TestRegistry_Lookup(t *testing.T) {
	cfg := testChainConfig(t)
	registry := NewRegistry()

	a, err := New("a", "http://127.0.0.1:1", filter.BuildOutboundChain(cfg))
	require.NoError(t, err)
	require.NoError(t, registry.Register(a))

	got, ok := registry.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "a", got.Name())

	_, ok = registry.Lookup("b")
	assert.False(t, ok)
}

func TestBuildRegistry_ClientsAreIndependent(t *testing.T) {
	// Each request must carry only its own client's rule; configuration must
	// never leak between registry entries.
	var headers http.Header
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
	}))
	defer backend.Close()

	cfg := &config.Config{
		File: &config.File{
			Version: 1,
			Clients: []config.ClientSpec{
				{Name: "a", BaseURL: backend.URL, Headers: []config.HeaderSpec{{Name: "custom-header", Value: "a"}}},
				{Name: "b", BaseURL: backend.URL, Headers: []config.HeaderSpec{{Name: "custom-header", Value: "b"}}},
			},
		},
	}

	registry, err := BuildRegistry(cfg, testChainConfig(t))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, registry.Names())

	a, ok := registry.Lookup("a")
	require.True(t, ok)
	b, ok := registry.Lookup("b")
	require.True(t, ok)

	_, err = a.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "a", headers.Get("custom-header"))

	_, err = b.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "b", headers.Get("custom-header"))

	_, err = a.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "a", headers.Get("custom-header"), "client a must not pick up client b's rule")
}

func TestBuildRegistry_InvalidTimeout(t *testing.T) {
	cfg := &config.Config{
		File: &config.File{
			Version: 1,
			Clients: []config.ClientSpec{
				{Name: "a", BaseURL: "http://127.0.0.1:1", Timeout: "soon"},
			},
		},
	}

	_, err := BuildRegistry(cfg, testChainConfig(t))
	require.Error(t, err)
}
