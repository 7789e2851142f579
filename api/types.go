package api

import "time"

// Outcome represents the result of a header rule evaluation.
type Outcome string

const (
	OutcomeAllow  Outcome = "allow"
	OutcomeForbid Outcome = "forbid"
)

// Direction indicates whether an exchange is a request arriving at the
// gateway or a request leaving through a named client.
type Direction string

const (
	DirectionInbound  Direction = "inbound"  // arriving at a guarded route
	DirectionOutbound Direction = "outbound" // leaving through a named client
)

// AuditRecord represents a single filtered exchange.
type AuditRecord struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Direction Direction     `json:"direction"`
	Route     string        `json:"route,omitempty"`
	Client    string        `json:"client,omitempty"`
	Header    string        `json:"header,omitempty"`
	Outcome   Outcome       `json:"outcome"`
	Rule      string        `json:"rule,omitempty"`
	Message   string        `json:"message,omitempty"`
	Status    int           `json:"status,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// CheckRequest is used by the CLI `check` command and the admin API.
type CheckRequest struct {
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers,omitempty"`
}

// CheckResponse is the result of a dry-run header validation.
type CheckResponse struct {
	Outcome Outcome `json:"outcome"`
	Rule    string  `json:"rule,omitempty"`
	Message string  `json:"message,omitempty"`
	Status  int     `json:"status,omitempty"`
}
