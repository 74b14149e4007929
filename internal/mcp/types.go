// Package mcp exposes the coverage gate to agents over the Model Context Protocol.
package mcp

import (
	"context"

	"github.com/felixgeelhaar/covergate/internal/application"
	"github.com/felixgeelhaar/covergate/internal/domain"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/history"
)

// Service defines the application operations needed by MCP.
type Service interface {
	GateResult(ctx context.Context, opts application.GateOptions) (domain.Result, error)
}

// Config holds MCP server configuration.
type Config struct {
	ConfigPath  string // Config file used when a call names none; empty means none
	HistoryPath string // History file served as a resource and used for deltas
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() Config {
	return Config{
		HistoryPath: history.DefaultPath,
	}
}

// GateInput defines the input parameters for the gate tool.
type GateInput struct {
	Report       string   `json:"report,omitempty" jsonschema:"Path to the JSON coverage report"`
	Target       *float64 `json:"target,omitempty" jsonschema:"Minimum acceptable coverage percentage"`
	Config       string   `json:"config,omitempty" jsonschema:"Path to a covergate JSON or YAML config file"`
	PassOverride []string `json:"passOverride,omitempty" jsonschema:"Units that always pass"`
	FailOverride []string `json:"failOverride,omitempty" jsonschema:"Units that always fail"`
}

// ToolOutput is the structured result of the gate tool.
type ToolOutput struct {
	Passed   bool                `json:"passed"`
	Summary  string              `json:"summary,omitempty"`
	Units    []domain.UnitResult `json:"units,omitempty"`
	Failing  []string            `json:"failing"`
	Warnings []string            `json:"warnings,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// coalesce returns value if non-empty, otherwise fallback.
func coalesce(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
