package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/covergate/internal/infrastructure/history"
	"github.com/felixgeelhaar/covergate/internal/mcp"
)

var runMCPServer = func(cmd *cobra.Command, server *mcp.Server) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx)
}

func newMCPCmd(service func() Service) *cobra.Command {
	cfg := mcp.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the coverage gate over the Model Context Protocol (stdio)",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCPServer(cmd, mcp.New(service(), cfg, Version))
		},
	}
	cmd.Flags().StringVarP(&cfg.ConfigPath, "Config", "c", "", "default config file for gate calls")
	cmd.Flags().StringVar(&cfg.HistoryPath, "history", history.DefaultPath, "history file served as covergate://history")
	return cmd
}
