package filter

import (
	"net/http"
	"time"

	"github.com/tkingovr/headergate/api"
)

// Exchange carries one request's metadata through a filter chain. The header
// map is borrowed from the underlying request for the duration of the chain
// run; filters must not retain it past Process.
type Exchange struct {
	// Direction indicates inbound (arriving at a guarded route) or
	// outbound (leaving through a named client).
	Direction api.Direction

	// Method is the HTTP method of the request.
	Method string

	// Route is the route pattern (inbound) or request path (outbound).
	Route string

	// Client is the named client the exchange travels through, if any.
	Client string

	// Header is the request header map, borrowed from the request.
	Header http.Header

	// HeaderName is the rule header the filters acted on.
	HeaderName string

	// Outcome is set by the validation filter.
	Outcome api.Outcome

	// Rule is the label of the rule that decided the outcome.
	Rule string

	// Message is the human-readable denial text, if any.
	Message string

	// Status is the terminal HTTP status when the exchange is halted.
	Status int

	// StartTime records when the exchange entered the pipeline.
	StartTime time.Time

	// Halted indicates the pipeline decided a terminal response; remaining
	// filters (audit) still run but the outcome is final.
	Halted bool
}

// NewExchange creates an Exchange for a single request.
func NewExchange(direction api.Direction, route string, header http.Header) *Exchange {
	return &Exchange{
		Direction: direction,
		Route:     route,
		Header:    header,
		StartTime: time.Now(),
	}
}

// ToAuditRecord converts the exchange into an audit record.
func (ex *Exchange) ToAuditRecord() *api.AuditRecord {
	return &api.AuditRecord{
		Timestamp: ex.StartTime,
		Direction: ex.Direction,
		Route:     ex.Route,
		Client:    ex.Client,
		Header:    ex.HeaderName,
		Outcome:   ex.Outcome,
		Rule:      ex.Rule,
		Message:   ex.Message,
		Status:    ex.Status,
		Duration:  time.Since(ex.StartTime),
	}
}
