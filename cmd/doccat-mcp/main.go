package main

import (
	"context"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "doccat/internal/adapters/mcp"
	"doccat/internal/bootstrap"
)

func main() {
	// stdout carries the protocol; logs go to stderr
	app, logCloser, err := bootstrap.Start("doccat-mcp", os.Args[1:], os.Stderr)
	if err != nil {
		log.Fatalf("doccat-mcp: %v", err)
	}
	defer logCloser.Close()
	defer app.Close()

	mcpServer := server.NewMCPServer(
		"doccat-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, app.Runner)
	mcpadapter.RegisterWriteTools(mcpServer, app.Runner)

	if err := server.ServeStdio(mcpServer); err != nil {
		app.Logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
