package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/covergate/internal/application"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/config"
)

// Server wraps the application service with MCP protocol handling.
type Server struct {
	svc    Service
	config Config
	loader application.ConfigLoader
	server *mcp.Server
}

// New creates a new MCP server wrapping the given service.
func New(svc Service, cfg Config, version string) *Server {
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = DefaultConfig().HistoryPath
	}

	s := &Server{
		svc:    svc,
		config: cfg,
		loader: config.Loader{},
	}
	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "covergate",
			Version: version,
		},
		&mcp.ServerOptions{
			Capabilities: &mcp.ServerCapabilities{
				Tools:     &mcp.ToolCapabilities{},
				Resources: &mcp.ResourceCapabilities{},
			},
		},
	)
	s.registerTools()
	s.registerResources()
	return s
}

// Run serves over stdio and blocks until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "gate",
		Description: "Evaluate a JSON coverage report against a minimum coverage target with optional pass/fail overrides. Returns per-unit statuses and the failing set.",
	}, s.handleGate)
}

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         "covergate://history",
		Name:        "Gate History",
		Description: "Recorded gating runs with per-unit coverage and verdicts",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResource(&mcp.Resource{
		URI:         "covergate://config",
		Name:        "Current Configuration",
		Description: "Returns the configured covergate config file",
		MIMEType:    "application/json",
	}, s.handleConfigResource)
}
