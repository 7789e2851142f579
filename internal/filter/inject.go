package filter

import (
	"context"

	"github.com/tkingovr/headergate/api"
	"github.com/tkingovr/headergate/internal/rule"
)

// InjectFilter sets a rule's header on every outbound request. Injection
// overwrites any existing values, so repeated application leaves exactly one
// header entry. It never fails.
type InjectFilter struct {
	rule rule.Rule
}

// NewInjectFilter creates an injection filter for the given rule.
func NewInjectFilter(r rule.Rule) *InjectFilter {
	return &InjectFilter{rule: r}
}

func (f *InjectFilter) Name() string { return "inject" }

func (f *InjectFilter) Process(_ context.Context, ex *Exchange) error {
	f.rule.Inject(ex.Header)
	ex.HeaderName = f.rule.Name()
	if ex.Outcome == "" {
		ex.Outcome = api.OutcomeAllow
	}
	return nil
}
