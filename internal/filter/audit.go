package filter

import (
	"context"

	"github.com/tkingovr/headergate/api"
	"github.com/tkingovr/headergate/internal/audit"
)

// AuditFilter writes an audit record for every processed exchange. It runs
// last and records halted exchanges too.
type AuditFilter struct {
	store audit.Store
}

func NewAuditFilter(store audit.Store) *AuditFilter {
	return &AuditFilter{store: store}
}

func (f *AuditFilter) Name() string { return "audit" }

func (f *AuditFilter) Process(ctx context.Context, ex *Exchange) error {
	// Exchanges no filter decided on (unguarded routes) audit as allowed.
	if ex.Outcome == "" {
		ex.Outcome = api.OutcomeAllow
	}
	return f.store.Write(ctx, ex.ToAuditRecord())
}
