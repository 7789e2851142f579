package guard

import (
	"context"

	"github.com/tkingovr/headergate/api"
)

// Sequence evaluates engines in order. The first forbid wins; when every
// engine allows, the last result is returned. It mirrors how the inbound
// filter chain stacks the route table's validation in front of a Rego guard,
// so dry-run checks report what the gateway would enforce.
type Sequence struct {
	engines []Engine
}

// NewSequence creates a sequence over the given engines.
func NewSequence(engines ...Engine) *Sequence {
	return &Sequence{engines: engines}
}

// Evaluate runs each engine until one forbids.
func (s *Sequence) Evaluate(ctx context.Context, input *EvalInput) (*EvalResult, error) {
	var last *EvalResult
	for _, e := range s.engines {
		result, err := e.Evaluate(ctx, input)
		if err != nil {
			return nil, err
		}
		if result.Outcome == api.OutcomeForbid {
			return result, nil
		}
		last = result
	}
	if last == nil {
		return &EvalResult{Outcome: api.OutcomeAllow, Rule: "_empty_sequence"}, nil
	}
	return last, nil
}

// Reload reloads every engine in the sequence.
func (s *Sequence) Reload(ctx context.Context) error {
	for _, e := range s.engines {
		if err := e.Reload(ctx); err != nil {
			return err
		}
	}
	return nil
}
