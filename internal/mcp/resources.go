package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/covergate/internal/infrastructure/history"
)

// handleHistoryResource returns the recorded gating runs.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	store := &history.FileStore{Path: s.config.HistoryPath}
	h, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return jsonResource(req, h)
}

// handleConfigResource returns the server's default config file.
func (s *Server) handleConfigResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.config.ConfigPath == "" {
		return nil, errors.New("no config file configured")
	}
	cfg, err := s.loader.Load(s.config.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return jsonResource(req, configView{
		CoverageReport: cfg.CoverageReport,
		CoverageTarget: cfg.CoverageTarget,
		PassOverride:   cfg.PassOverride,
		FailOverride:   cfg.FailOverride,
	})
}

// configView mirrors the on-disk key names.
type configView struct {
	CoverageReport *string  `json:"CoverageReport,omitempty"`
	CoverageTarget *float64 `json:"CoverageTarget,omitempty"`
	PassOverride   []string `json:"PassOverride,omitempty"`
	FailOverride   []string `json:"FailOverride,omitempty"`
}

func jsonResource(req *mcp.ReadResourceRequest, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
