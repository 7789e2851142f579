package client

import (
	"net/http"

	"github.com/tkingovr/headergate/api"
	"github.com/tkingovr/headergate/internal/filter"
)

// filterTransport runs the outbound filter chain before delegating to the
// base transport. The request is cloned first: RoundTrippers must not modify
// the caller's request, and the injected headers only belong on the wire
// copy.
type filterTransport struct {
	name  string
	base  http.RoundTripper
	chain *filter.Chain
}

func (t *filterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	ex := filter.NewExchange(api.DirectionOutbound, req.URL.Path, req.Header)
	ex.Method = req.Method
	ex.Client = t.name

	if err := t.chain.Process(req.Context(), ex); err != nil {
		return nil, err
	}

	return t.base.RoundTrip(req)
}
