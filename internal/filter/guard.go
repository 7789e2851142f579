package filter

import (
	"context"
	"net/http"

	"github.com/tkingovr/headergate/api"
	"github.com/tkingovr/headergate/internal/guard"
)

// GuardFilter evaluates the exchange against a guard engine. It backs
// Rego-based route guards; the static route table is applied through
// per-route ValidateFilter instances instead.
type GuardFilter struct {
	engine guard.Engine
}

func NewGuardFilter(engine guard.Engine) *GuardFilter {
	return &GuardFilter{engine: engine}
}

func (f *GuardFilter) Name() string { return "guard" }

func (f *GuardFilter) Process(ctx context.Context, ex *Exchange) error {
	if ex.Halted || ex.Direction != api.DirectionInbound {
		return nil
	}

	input := &guard.EvalInput{
		Method: ex.Method,
		Path:   ex.Route,
		Header: ex.Header,
	}

	result, err := f.engine.Evaluate(ctx, input)
	if err != nil {
		return err
	}

	ex.Outcome = result.Outcome
	ex.Rule = result.Rule
	ex.Message = result.Message

	if result.Outcome == api.OutcomeForbid {
		ex.Status = result.Status
		if ex.Status == 0 {
			ex.Status = http.StatusForbidden
		}
		ex.Halted = true
	}

	return nil
}
