package cmd

import (
	"fmt"

	mcpserver "github.com/lukman83/ammo-bundler/mcp"
	"github.com/spf13/cobra"
)

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Start MCP + REST HTTP server",
	Long:  "Start the MCP server over HTTP on /mcp, with a JSON POST /optimize endpoint and /healthz.",
	RunE:  runServeHTTP,
}

func init() {
	serveHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	serveHTTPCmd.Flags().Duration("request-timeout", requestTimeout*2, "Deadline for one REST optimize call")
	rootCmd.AddCommand(serveHTTPCmd)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	orch, err := newOrchestrator()
	if err != nil {
		return err
	}

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}
	timeout, _ := cmd.Flags().GetDuration("request-timeout")

	return mcpserver.ServeHTTP(orch, mcpserver.HTTPOptions{
		Addr:           fmt.Sprintf(":%s", port),
		APIKey:         cfg.APIKey,
		RequestTimeout: timeout,
		Logger:         logger.Named("http"),
	})
}
