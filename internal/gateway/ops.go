package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/threatstage/internal/scenario"
)

// Analyzer is the pipeline-facing contract of the analysis backend.
// The orchestrator depends on this interface, not on Client, so tests and
// the fallback chain can substitute implementations.
type Analyzer interface {
	GenerateScript(ctx context.Context, description string) (string, error)
	ModelScenario(ctx context.Context, script string) (*scenario.Result, error)
	AnalyzeInteraction(ctx context.Context, attackScript, defenseScript string) (*scenario.InteractionAnalysis, error)
	GenerateResponsePlan(ctx context.Context, event scenario.SecurityEvent) (*scenario.ResponsePlan, error)
}

// GenerateScript produces a simulated attack script from a natural-language
// description.
func (c *Client) GenerateScript(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("%w: empty description", ErrInvalidInput)
	}

	raw, err := c.chat(ctx, generateScriptPrompt, description)
	if err != nil {
		return "", err
	}

	var out struct {
		Script string `json:"script"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil || strings.TrimSpace(out.Script) == "" {
		// Some models return the bare script despite the JSON instruction.
		if script := strings.TrimSpace(cleanJSON(raw)); script != "" && !strings.HasPrefix(script, "{") {
			return script, nil
		}
		return "", fmt.Errorf("%w: no script in response", ErrUpstream)
	}
	return out.Script, nil
}

// ModelScenario models the impact of an attack script and returns the full
// structured scenario result.
func (c *Client) ModelScenario(ctx context.Context, script string) (*scenario.Result, error) {
	if strings.TrimSpace(script) == "" {
		return nil, fmt.Errorf("%w: empty script", ErrInvalidInput)
	}

	raw, err := c.chat(ctx, modelScenarioPrompt, "Script to analyze:\n```\n"+script+"\n```")
	if err != nil {
		return nil, err
	}

	var result scenario.Result
	if err := decode(raw, scenarioSchema, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeInteraction simulates the engagement between an attack script and a
// defense script and scores the defense.
func (c *Client) AnalyzeInteraction(ctx context.Context, attackScript, defenseScript string) (*scenario.InteractionAnalysis, error) {
	if strings.TrimSpace(attackScript) == "" || strings.TrimSpace(defenseScript) == "" {
		return nil, fmt.Errorf("%w: attack and defense scripts are required", ErrInvalidInput)
	}

	user := "Attack Script:\n```\n" + attackScript + "\n```\n\nDefense Script:\n```\n" + defenseScript + "\n```"
	raw, err := c.chat(ctx, analyzeInteractionPrompt, user)
	if err != nil {
		return nil, err
	}

	var result scenario.InteractionAnalysis
	if err := decode(raw, interactionSchema, &result); err != nil {
		return nil, err
	}
	result.RenumberLog()
	return &result, nil
}

// GenerateResponsePlan builds an incident response plan for one event.
func (c *Client) GenerateResponsePlan(ctx context.Context, event scenario.SecurityEvent) (*scenario.ResponsePlan, error) {
	if strings.TrimSpace(event.Description) == "" {
		return nil, fmt.Errorf("%w: event description is required", ErrInvalidInput)
	}

	user := fmt.Sprintf("Security Event Details:\n- Event ID: %s\n- Timestamp: %s\n- Severity: %s\n- Description: %s\n- Current Status: %s",
		event.ID, event.Timestamp, event.Severity, event.Description, event.Status)
	raw, err := c.chat(ctx, responsePlanPrompt, user)
	if err != nil {
		return nil, err
	}

	var plan scenario.ResponsePlan
	if err := decode(raw, planSchema, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
