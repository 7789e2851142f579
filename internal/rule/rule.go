// Package rule defines the immutable header rule shared by the inbound
// validation and outbound injection filters.
package rule

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyName  = errors.New("header rule: name must not be empty")
	ErrEmptyValue = errors.New("header rule: value must not be empty")
)

// Rule is an immutable header name/value pair. The zero value is invalid;
// use New. A Rule is safe for concurrent use across any number of requests.
type Rule struct {
	name  string
	value string
}

// New creates a header rule. Both name and value are required.
func New(name, value string) (Rule, error) {
	if name == "" {
		return Rule{}, ErrEmptyName
	}
	if value == "" {
		return Rule{}, ErrEmptyValue
	}
	return Rule{name: name, value: value}, nil
}

// Name returns the header name.
func (r Rule) Name() string { return r.name }

// Value returns the expected header value.
func (r Rule) Value() string { return r.value }

// Inject sets the rule's header on h, overwriting any existing values.
// Calling it repeatedly leaves exactly one entry for the header.
func (r Rule) Inject(h http.Header) {
	h.Set(r.name, r.value)
}

// Check reports whether h carries the rule's header with exactly the
// expected value. Name lookup is canonicalized by http.Header; the value
// comparison is case-sensitive with no trimming.
func (r Rule) Check(h http.Header) bool {
	return h.Get(r.name) == r.value
}

// Denial returns the response body used when Check fails.
func (r Rule) Denial() string {
	return fmt.Sprintf("Expected header '%s' not present or value not equal to '%s'", r.name, r.value)
}

func (r Rule) String() string {
	return r.name + ": " + r.value
}
