package filter

import "context"

// Filter is a single step in the exchange processing pipeline.
type Filter interface {
	// Name returns the filter name for logging.
	Name() string

	// Process processes the exchange. It may modify the exchange (e.g., set
	// the outcome, inject a header) or produce side effects (e.g., audit
	// logging). Returning an error aborts the filter chain.
	Process(ctx context.Context, ex *Exchange) error
}
