package guard

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"
	"github.com/open-policy-agent/opa/topdown"

	"github.com/tkingovr/headergate/api"
)

// OPAEngine implements the Engine interface using embedded OPA/Rego, for
// route guards that need more than a single header pair.
type OPAEngine struct {
	mu   sync.RWMutex
	path string

	// Compiled query for evaluation
	query rego.PreparedEvalQuery
}

// NewOPAEngine creates a new OPA engine from a .rego guard file.
func NewOPAEngine(path string) (*OPAEngine, error) {
	e := &OPAEngine{path: path}
	if err := e.Reload(context.Background()); err != nil {
		return nil, err
	}
	return e, nil
}

// NewOPAEngineFromSource creates a new OPA engine from raw Rego source.
func NewOPAEngineFromSource(source string) (*OPAEngine, error) {
	e := &OPAEngine{}
	if err := e.loadSource(source); err != nil {
		return nil, err
	}
	return e, nil
}

// Evaluate runs the Rego guard against the given input.
//
// The Rego guard must define the following in package headergate:
//
//	outcome: "allow" | "forbid"
//	rule_name: string (optional)
//	message: string (optional)
//
// Input available to the guard:
//
//	input.method: string
//	input.path: string
//	input.headers: object of header name to first value
func (e *OPAEngine) Evaluate(ctx context.Context, input *EvalInput) (*EvalResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	headers := map[string]string{}
	for name := range input.Header {
		headers[name] = input.Header.Get(name)
	}

	inputMap := map[string]any{
		"method":  input.Method,
		"path":    input.Path,
		"headers": headers,
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		// If evaluation fails due to undefined, fail closed
		if topdown.IsError(err) {
			return &EvalResult{
				Outcome: api.OutcomeForbid,
				Rule:    "_opa_error",
				Message: "OPA evaluation error: " + err.Error(),
				Status:  http.StatusForbidden,
			}, nil
		}
		return nil, fmt.Errorf("OPA evaluation failed: %w", err)
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return &EvalResult{
			Outcome: api.OutcomeForbid,
			Rule:    "_opa_default",
			Message: "OPA guard returned no result",
			Status:  http.StatusForbidden,
		}, nil
	}

	// The result is a map from the full object query
	resultMap, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return &EvalResult{
			Outcome: api.OutcomeForbid,
			Rule:    "_opa_parse_error",
			Message: "unexpected OPA result type",
			Status:  http.StatusForbidden,
		}, nil
	}

	return parseOPAResult(resultMap), nil
}

// Reload re-reads the Rego guard file from disk and recompiles.
func (e *OPAEngine) Reload(_ context.Context) error {
	if e.path == "" {
		return nil
	}
	data, err := os.ReadFile(e.path)
	if err != nil {
		return fmt.Errorf("reading OPA guard file: %w", err)
	}
	return e.loadSource(string(data))
}

func (e *OPAEngine) loadSource(source string) error {
	// Parse to validate
	_, err := ast.ParseModuleWithOpts("guard.rego", source, ast.ParserOptions{RegoVersion: ast.RegoV1})
	if err != nil {
		return fmt.Errorf("parsing Rego guard: %w", err)
	}

	store := inmem.New()

	r := rego.New(
		rego.Query("data.headergate"),
		rego.Module("guard.rego", source),
		rego.Store(store),
	)

	query, err := r.PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("preparing OPA query: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = query

	return nil
}

func parseOPAResult(m map[string]any) *EvalResult {
	result := &EvalResult{
		Outcome: api.OutcomeForbid, // fail closed if not set
		Status:  http.StatusForbidden,
	}

	if v, ok := m["outcome"].(string); ok {
		switch v {
		case "allow":
			result.Outcome = api.OutcomeAllow
			result.Status = 0
		case "forbid":
			result.Outcome = api.OutcomeForbid
		}
	}

	if r, ok := m["rule_name"].(string); ok {
		result.Rule = r
	}
	if msg, ok := m["message"].(string); ok {
		result.Message = msg
	}

	return result
}
