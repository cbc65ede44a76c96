package cmd

import (
	"fmt"

	mcpserver "github.com/lukman83/ammo-bundler/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	orch, err := newOrchestrator()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting Ammo Bundler MCP server on stdio...")

	if err := mcpserver.Serve(orch, logger.Named("mcp")); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
