package main

import (
	"github.com/urfave/cli/v2"

	"github.com/battle-for-wesnoth/wmlc/internal/debug"
	internalmcp "github.com/battle-for-wesnoth/wmlc/internal/mcp"
)

var mcpCommand = &cli.Command{
	Name:   "mcp",
	Usage:  "Start an MCP (Model Context Protocol) server with stdio transport",
	Action: mcpAction,
}

func mcpAction(c *cli.Context) error {
	// CRITICAL: stdio is the MCP transport, so debug output must never
	// reach stdout/stderr past this point.
	debug.SetMCPMode(true)

	ctx, cancel := signalContext()
	defer cancel()

	server := internalmcp.NewServer()
	return server.Run(ctx)
}
