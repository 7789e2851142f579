package guard

import (
	"context"
	"net/http"

	"github.com/tkingovr/headergate/api"
	"github.com/tkingovr/headergate/internal/rule"
)

// entry associates a route pattern with its required header rule.
type entry struct {
	pattern string
	rule    rule.Rule
}

// Table is a static route-to-rule table built once at startup. Evaluation is
// first-match-wins on the route pattern; routes with no entry are allowed.
// The table is immutable after Build, so concurrent evaluation needs no
// locking.
type Table struct {
	entries []entry
}

// TableBuilder accumulates route requirements.
type TableBuilder struct {
	entries []entry
}

// NewTableBuilder creates an empty table builder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{}
}

// Require records that requests to pattern must carry the rule's header.
func (b *TableBuilder) Require(pattern string, r rule.Rule) *TableBuilder {
	b.entries = append(b.entries, entry{pattern: pattern, rule: r})
	return b
}

// Build produces the immutable table.
func (b *TableBuilder) Build() *Table {
	entries := make([]entry, len(b.entries))
	copy(entries, b.entries)
	return &Table{entries: entries}
}

// Lookup returns the rule required for a route pattern, if any.
func (t *Table) Lookup(pattern string) (rule.Rule, bool) {
	for _, e := range t.entries {
		if e.pattern == pattern {
			return e.rule, true
		}
	}
	return rule.Rule{}, false
}

// Patterns returns the guarded route patterns in registration order.
func (t *Table) Patterns() []string {
	patterns := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		patterns = append(patterns, e.pattern)
	}
	return patterns
}

// Evaluate checks the input path against the table, first match wins.
func (t *Table) Evaluate(_ context.Context, input *EvalInput) (*EvalResult, error) {
	for _, e := range t.entries {
		if e.pattern != input.Path {
			continue
		}
		if e.rule.Check(input.Header) {
			return &EvalResult{
				Outcome: api.OutcomeAllow,
				Rule:    "require:" + e.rule.Name(),
			}, nil
		}
		return &EvalResult{
			Outcome: api.OutcomeForbid,
			Rule:    "require:" + e.rule.Name(),
			Message: e.rule.Denial(),
			Status:  http.StatusForbidden,
		}, nil
	}

	// No entry for this route
	return &EvalResult{
		Outcome: api.OutcomeAllow,
		Rule:    "_unguarded",
	}, nil
}

// Reload is a no-op, the table is immutable.
func (t *Table) Reload(_ context.Context) error { return nil }
