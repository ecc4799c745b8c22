package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	tsmcp "github.com/ppiankov/threatstage/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs threatstage as an MCP (Model Context Protocol) server over stdio.\nExposes the pipeline as tools: run_scenario, generate_attack_script, test_countermeasure, response_plan, list_history, load_session.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	orc, _, err := buildOrchestrator()
	if err != nil {
		return err
	}

	srv := tsmcp.New(orc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "threatstage MCP server running on stdio")
	return srv.Run(ctx)
}
