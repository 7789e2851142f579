package api

import "time"

// QueryFilter defines criteria for querying audit records.
type QueryFilter struct {
	Since   time.Time `json:"since,omitempty"`
	Until   time.Time `json:"until,omitempty"`
	Route   string    `json:"route,omitempty"`
	Client  string    `json:"client,omitempty"`
	Outcome Outcome   `json:"outcome,omitempty"`
	Limit   int       `json:"limit,omitempty"`
	Offset  int       `json:"offset,omitempty"`
}

// AuditStats provides summary statistics for the admin API.
type AuditStats struct {
	TotalExchanges int            `json:"total_exchanges"`
	AllowCount     int            `json:"allow_count"`
	ForbidCount    int            `json:"forbid_count"`
	ByRoute        map[string]int `json:"by_route"`
	ByClient       map[string]int `json:"by_client"`
}
