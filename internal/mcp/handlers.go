package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/threatstage/internal/orchestrator"
	"github.com/ppiankov/threatstage/internal/scenario"
	"github.com/ppiankov/threatstage/internal/session"
)

// --- Input/Output types ---

// RunScenarioInput defines parameters for the run_scenario tool.
type RunScenarioInput struct {
	Script      string `json:"script" jsonschema:"simulated attack script to model"`
	Description string `json:"description,omitempty" jsonschema:"short description used as the session name"`
}

// RunScenarioOutput is the completed session.
type RunScenarioOutput struct {
	Session *session.Session `json:"session"`
}

// GenerateScriptInput defines parameters for the generate_attack_script tool.
type GenerateScriptInput struct {
	Description string `json:"description" jsonschema:"natural-language description of the attack to simulate"`
}

// GenerateScriptOutput contains the generated script.
type GenerateScriptOutput struct {
	Script string `json:"script"`
}

// TestCountermeasureInput is empty — the current session is tested.
type TestCountermeasureInput struct{}

// TestCountermeasureOutput contains the interaction analysis.
type TestCountermeasureOutput struct {
	Interaction *scenario.InteractionAnalysis `json:"interaction"`
	Metrics     scenario.Metrics              `json:"metrics"`
}

// ResponsePlanInput defines parameters for the response_plan tool.
type ResponsePlanInput struct {
	EventID string `json:"event_id" jsonschema:"id of a security event in the current session"`
}

// ResponsePlanOutput contains the generated plan.
type ResponsePlanOutput struct {
	Plan *scenario.ResponsePlan `json:"plan"`
}

// ListHistoryInput is empty — no parameters needed.
type ListHistoryInput struct{}

// ListHistoryOutput lists past sessions, newest first.
type ListHistoryOutput struct {
	Sessions []HistoryItem `json:"sessions"`
}

// HistoryItem is a compact history entry.
type HistoryItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	RiskScore int    `json:"risk_score"`
}

// LoadSessionInput defines parameters for the load_session tool.
type LoadSessionInput struct {
	ID string `json:"id" jsonschema:"session id from list_history"`
}

// LoadSessionOutput is the loaded session.
type LoadSessionOutput struct {
	Session *session.Session `json:"session"`
}

// --- Handlers ---

func (s *Server) handleRunScenario(ctx context.Context, req *mcpsdk.CallToolRequest, input RunScenarioInput) (*mcpsdk.CallToolResult, RunScenarioOutput, error) {
	sess, err := s.orc.StartSimulation(ctx, input.Script, input.Description)
	if err != nil {
		return nil, RunScenarioOutput{}, err
	}
	return nil, RunScenarioOutput{Session: sess}, nil
}

func (s *Server) handleGenerateScript(ctx context.Context, req *mcpsdk.CallToolRequest, input GenerateScriptInput) (*mcpsdk.CallToolResult, GenerateScriptOutput, error) {
	script, err := s.orc.GenerateScript(ctx, input.Description)
	if err != nil {
		return nil, GenerateScriptOutput{}, err
	}
	return nil, GenerateScriptOutput{Script: script}, nil
}

func (s *Server) handleTestCountermeasure(ctx context.Context, req *mcpsdk.CallToolRequest, input TestCountermeasureInput) (*mcpsdk.CallToolResult, TestCountermeasureOutput, error) {
	ia, err := s.orc.TestCountermeasure(ctx)
	if err != nil {
		return nil, TestCountermeasureOutput{}, err
	}
	out := TestCountermeasureOutput{Interaction: ia}
	if cur := s.orc.Current(); cur != nil {
		out.Metrics = cur.Metrics
	}
	return nil, out, nil
}

func (s *Server) handleResponsePlan(ctx context.Context, req *mcpsdk.CallToolRequest, input ResponsePlanInput) (*mcpsdk.CallToolResult, ResponsePlanOutput, error) {
	event, err := s.findEvent(input.EventID)
	if err != nil {
		return nil, ResponsePlanOutput{}, err
	}
	plan, err := s.orc.GenerateResponsePlan(ctx, event)
	if err != nil {
		return nil, ResponsePlanOutput{}, err
	}
	return nil, ResponsePlanOutput{Plan: plan}, nil
}

func (s *Server) handleListHistory(ctx context.Context, req *mcpsdk.CallToolRequest, input ListHistoryInput) (*mcpsdk.CallToolResult, ListHistoryOutput, error) {
	history := s.orc.History()
	items := make([]HistoryItem, len(history))
	for i, sess := range history {
		items[i] = HistoryItem{
			ID:        sess.ID,
			Name:      sess.Name,
			CreatedAt: sess.CreatedAt.Format(time.RFC3339),
			RiskScore: sess.Analysis.RiskScore,
		}
	}
	return nil, ListHistoryOutput{Sessions: items}, nil
}

func (s *Server) handleLoadSession(ctx context.Context, req *mcpsdk.CallToolRequest, input LoadSessionInput) (*mcpsdk.CallToolResult, LoadSessionOutput, error) {
	sess, err := s.orc.LoadFromHistory(input.ID)
	if err != nil {
		return nil, LoadSessionOutput{}, err
	}
	return nil, LoadSessionOutput{Session: sess}, nil
}

func (s *Server) findEvent(id string) (scenario.SecurityEvent, error) {
	cur := s.orc.Current()
	if cur == nil {
		return scenario.SecurityEvent{}, orchestrator.ErrNoSession
	}
	for _, e := range cur.Events {
		if e.ID == id {
			return e, nil
		}
	}
	return scenario.SecurityEvent{}, fmt.Errorf("event %q not in current session", id)
}
