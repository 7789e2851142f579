package filter

import (
	"context"
	"net/http"

	"github.com/tkingovr/headergate/api"
	"github.com/tkingovr/headergate/internal/rule"
)

// ValidateFilter checks that an inbound request carries its route's required
// header with exactly the expected value. A mismatch or absent header halts
// the exchange with a 403 terminal response; a match is a no-op and request
// processing continues.
type ValidateFilter struct {
	rule rule.Rule
}

// NewValidateFilter creates a validation filter for the given rule.
func NewValidateFilter(r rule.Rule) *ValidateFilter {
	return &ValidateFilter{rule: r}
}

func (f *ValidateFilter) Name() string { return "validate" }

func (f *ValidateFilter) Process(_ context.Context, ex *Exchange) error {
	if ex.Halted {
		return nil
	}
	ex.HeaderName = f.rule.Name()

	if !f.rule.Check(ex.Header) {
		ex.Outcome = api.OutcomeForbid
		ex.Rule = "require:" + f.rule.Name()
		ex.Message = f.rule.Denial()
		ex.Status = http.StatusForbidden
		ex.Halted = true
		return nil
	}

	ex.Outcome = api.OutcomeAllow
	ex.Rule = "require:" + f.rule.Name()
	return nil
}
