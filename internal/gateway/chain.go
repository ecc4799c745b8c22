package gateway

import (
	"context"
	"errors"

	"github.com/ppiankov/threatstage/internal/scenario"
)

// Chain is a two-element fallback: interaction analysis retries once against
// a secondary, lower-capability backend when the primary is rate limited.
// The retry is sequential and never recursive — a rate limit from the
// secondary propagates immediately. All other operations go to the primary
// only; this is the single automatic retry in the system.
type Chain struct {
	Primary   Analyzer
	Secondary Analyzer
}

// NewChain builds a fallback chain. Secondary may be nil, in which case
// rate limits propagate like any other failure.
func NewChain(primary, secondary Analyzer) *Chain {
	return &Chain{Primary: primary, Secondary: secondary}
}

// GenerateScript delegates to the primary backend.
func (c *Chain) GenerateScript(ctx context.Context, description string) (string, error) {
	return c.Primary.GenerateScript(ctx, description)
}

// ModelScenario delegates to the primary backend.
func (c *Chain) ModelScenario(ctx context.Context, script string) (*scenario.Result, error) {
	return c.Primary.ModelScenario(ctx, script)
}

// AnalyzeInteraction tries the primary and, on a rate-limit signal only,
// the secondary exactly once.
func (c *Chain) AnalyzeInteraction(ctx context.Context, attackScript, defenseScript string) (*scenario.InteractionAnalysis, error) {
	result, err := c.Primary.AnalyzeInteraction(ctx, attackScript, defenseScript)
	if err == nil {
		return result, nil
	}
	if c.Secondary == nil || !errors.Is(err, ErrRateLimited) {
		return nil, err
	}
	return c.Secondary.AnalyzeInteraction(ctx, attackScript, defenseScript)
}

// GenerateResponsePlan delegates to the primary backend.
func (c *Chain) GenerateResponsePlan(ctx context.Context, event scenario.SecurityEvent) (*scenario.ResponsePlan, error) {
	return c.Primary.GenerateResponsePlan(ctx, event)
}
