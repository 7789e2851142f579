package filter

import (
	"context"
	"fmt"
	"log/slog"
)

// Chain executes a sequence of filters in order.
type Chain struct {
	filters []Filter
	logger  *slog.Logger
}

// NewChain creates a new filter chain.
func NewChain(logger *slog.Logger, filters ...Filter) *Chain {
	return &Chain{
		filters: filters,
		logger:  logger,
	}
}

// Process runs all filters in sequence on the given exchange. If a filter
// sets ex.Halted, remaining filters still run (e.g., audit) but the outcome
// is final.
func (c *Chain) Process(ctx context.Context, ex *Exchange) error {
	for _, f := range c.filters {
		if err := f.Process(ctx, ex); err != nil {
			return fmt.Errorf("filter %q: %w", f.Name(), err)
		}
		c.logger.Debug("filter executed",
			"filter", f.Name(),
			"direction", ex.Direction,
			"route", ex.Route,
			"outcome", ex.Outcome,
			"halted", ex.Halted,
		)
	}
	return nil
}

// AddFilter appends a filter to the chain.
func (c *Chain) AddFilter(f Filter) {
	c.filters = append(c.filters, f)
}
