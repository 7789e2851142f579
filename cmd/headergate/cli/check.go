package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkingovr/headergate/internal/config"
	"github.com/tkingovr/headergate/internal/guard"
)

var (
	checkPath    string
	checkHeaders []string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run a route guard check without a running gateway",
	Long: `Check what verdict a request would receive without starting the gateway.
Useful for testing and debugging header rules and Rego guards.`,
	Example: `  headergate check -c gateway.yaml --path /internal/a --header custom-header=a
  headergate check -c gateway.yaml --path /internal/a`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkPath, "path", "", "request path to check")
	checkCmd.Flags().StringArrayVar(&checkHeaders, "header", nil, "request header as name=value (repeatable)")
	_ = checkCmd.MarkFlagRequired("path")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("--config/-c is required for check command")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	engine, table, err := buildGuards(cfg)
	if err != nil {
		return err
	}
	// Table first, then the Rego guard, matching the inbound chain's order.
	var checkEngine guard.Engine = table
	if engine != nil {
		checkEngine = guard.NewSequence(table, engine)
	}

	header := http.Header{}
	for _, h := range checkHeaders {
		name, value, ok := strings.Cut(h, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --header %q (expected name=value)", h)
		}
		header.Set(name, value)
	}

	input := &guard.EvalInput{
		Method: http.MethodGet,
		Path:   checkPath,
		Header: header,
	}

	result, err := checkEngine.Evaluate(context.Background(), input)
	if err != nil {
		return fmt.Errorf("evaluation error: %w", err)
	}

	output := struct {
		Outcome string `json:"outcome"`
		Rule    string `json:"rule"`
		Message string `json:"message,omitempty"`
		Status  int    `json:"status,omitempty"`
	}{
		Outcome: string(result.Outcome),
		Rule:    result.Rule,
		Message: result.Message,
		Status:  result.Status,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
