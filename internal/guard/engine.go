// Package guard decides whether an inbound request may reach its route
// handler. The static route table covers the common case of one required
// header per route; Rego guards cover anything richer.
package guard

import (
	"context"
	"net/http"

	"github.com/tkingovr/headergate/api"
)

// EvalInput is the input to a guard engine evaluation.
type EvalInput struct {
	Method string      `json:"method"`
	Path   string      `json:"path"`
	Header http.Header `json:"header,omitempty"`
}

// EvalResult is the output of a guard engine evaluation.
type EvalResult struct {
	Outcome api.Outcome `json:"outcome"`
	Rule    string      `json:"rule,omitempty"`
	Message string      `json:"message,omitempty"`
	Status  int         `json:"status,omitempty"`
}

// Engine is the interface for route guard backends.
type Engine interface {
	// Evaluate checks a request against the loaded guards and returns an outcome.
	Evaluate(ctx context.Context, input *EvalInput) (*EvalResult, error)

	// Reload reloads guards from the source (file, remote, etc.).
	Reload(ctx context.Context) error
}
