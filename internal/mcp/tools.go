package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/covergate/internal/application"
	"github.com/felixgeelhaar/covergate/internal/domain"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/history"
)

// handleGate implements the gate tool. Failures are reported in the output
// rather than as protocol errors so agents can read them.
func (s *Server) handleGate(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GateInput,
) (*mcp.CallToolResult, ToolOutput, error) {
	output := ToolOutput{Failing: []string{}}

	cfg, err := application.Resolve(application.Inputs{
		ReportPath: input.Report,
		Target:     input.Target,
		ConfigPath: coalesce(input.Config, s.config.ConfigPath),
	}, s.loader)
	if err != nil {
		output.Error = err.Error()
		output.Summary = "Invalid gate configuration"
		return nil, output, nil
	}
	cfg.PassOverride = union(cfg.PassOverride, input.PassOverride)
	cfg.FailOverride = union(cfg.FailOverride, input.FailOverride)

	result, err := s.svc.GateResult(ctx, application.GateOptions{
		Config:       cfg,
		Output:       application.OutputJSON,
		HistoryStore: &history.FileStore{Path: s.config.HistoryPath},
	})
	if err != nil {
		output.Error = err.Error()
		output.Summary = "Coverage report could not be gated"
		return nil, output, nil
	}

	output.Passed = result.Passed
	output.Units = result.Units
	output.Warnings = result.Warnings
	if result.Failing != nil {
		output.Failing = result.Failing
	}
	output.Summary = generateSummary(result)
	return nil, output, nil
}

// union appends the names in extra not already in base. A nil result means
// neither side named anything.
func union(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := append([]string(nil), base...)
	for _, name := range base {
		seen[name] = struct{}{}
	}
	for _, name := range extra {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// generateSummary creates a human-readable summary from the result.
func generateSummary(result domain.Result) string {
	if len(result.Units) == 0 {
		return "No units found"
	}
	status := "FAIL"
	if result.Passed {
		status = "PASS"
	}
	return fmt.Sprintf("%s | %.1f%% mean | %d/%d units passing", status, result.MeanPercent(), result.PassingCount(), len(result.Units))
}
