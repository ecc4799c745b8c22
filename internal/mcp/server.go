// Package mcp exposes the scenario pipeline as MCP tools over stdio, so
// agent frontends can drive simulations without the HTTP API.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/threatstage/internal/orchestrator"
)

// Server wraps the MCP SDK server around the orchestrator.
type Server struct {
	mcpServer *mcpsdk.Server
	orc       *orchestrator.Orchestrator
}

// New creates an MCP server with the scenario tools registered.
func New(orc *orchestrator.Orchestrator) *Server {
	s := &Server{
		orc: orc,
		mcpServer: mcpsdk.NewServer(
			&mcpsdk.Implementation{
				Name:    "threatstage",
				Version: "0.1.0",
			},
			nil,
		),
	}
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_scenario",
		Description: "Model a simulated attack script: threat analysis, security events, affected resources, metrics, and a countermeasure effectiveness test. Returns the completed session.",
	}, s.handleRunScenario)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "generate_attack_script",
		Description: "Generate a simulated attack script from a natural-language description, for use with run_scenario.",
	}, s.handleGenerateScript)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "test_countermeasure",
		Description: "Re-test the current session's countermeasure against its attack script and reconcile the blocked-attacks metric.",
	}, s.handleTestCountermeasure)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "response_plan",
		Description: "Generate an incident response plan for one security event of the current session.",
	}, s.handleResponsePlan)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_history",
		Description: "List past scenario sessions, newest first.",
	}, s.handleListHistory)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "load_session",
		Description: "Load a past session from history and make it the current session.",
	}, s.handleLoadSession)
}
