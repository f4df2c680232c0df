package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gemauth/internal/adapters/driving/mcp"
	"github.com/custodia-labs/gemauth/internal/core/domain"
	"github.com/custodia-labs/gemauth/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so an AI assistant can drive
the Gemini OAuth flow and read stored credentials.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead.

The configuration file is watched while the server runs; backend changes
apply to the next tool call.

Examples:
  gemauth mcp serve
  gemauth mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	s, err := loadServices()
	if err != nil {
		return err
	}
	if !s.Settings.BackendConfigured() {
		logger.Warn("admin backend not configured; tool calls will fail until %s is set",
			domain.KeyBackendBaseURL)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		NewFlow:     s.NewFlow,
		Credentials: s.Credentials,
	})
	if err != nil {
		return err
	}

	if s.Watch != nil {
		err := s.Watch(cmd.Context(), func() {
			if s.Reload == nil {
				return
			}
			if err := s.Reload(); err != nil {
				logger.Warn("reloading configuration: %v", err)
				return
			}
			logger.Debug("backend configuration reloaded")
		})
		if err != nil {
			logger.Warn("configuration changes will not apply until restart: %v", err)
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
