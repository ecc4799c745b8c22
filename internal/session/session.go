// Package session holds the unit of persistence for the simulation pipeline:
// one scenario run (request, modeled result, optional countermeasure test)
// plus the bounded, durable history of past runs.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ppiankov/threatstage/internal/scenario"
)

// Session is one persisted scenario run. It is transient (zeroed result
// fields) while modeling is in flight and complete once the result arrives.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`

	Script      string `json:"script"`
	Description string `json:"description"`

	Analysis          scenario.Analysis             `json:"analysis"`
	Events            []scenario.SecurityEvent      `json:"events"`
	Metrics           scenario.Metrics              `json:"metrics"`
	AffectedResources []scenario.CloudResource      `json:"affectedResources"`
	TopProcesses      []scenario.ChartPoint         `json:"topProcesses"`
	TopEvents         []scenario.ChartPoint         `json:"topEvents"`
	Interaction       *scenario.InteractionAnalysis `json:"interactionResult,omitempty"`
}

// New creates a transient session for a run that is about to start.
// The display name falls back to a placeholder when no description is given.
func New(script, description string) *Session {
	name := description
	if name == "" {
		name = "Untitled Scenario"
	}
	return &Session{
		ID:          NewID(),
		CreatedAt:   time.Now().UTC(),
		Name:        name,
		Script:      script,
		Description: description,
	}
}

// NewID generates a session identifier. The millisecond prefix makes later
// sessions sort first under reverse-lexicographic order; the random suffix
// keeps ids unique within the same millisecond.
func NewID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("sess-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}

// ApplyResult copies a completed scenario result into the session.
func (s *Session) ApplyResult(res *scenario.Result) {
	s.Analysis = res.Analysis
	s.Events = res.Events
	s.Metrics = res.Metrics
	s.AffectedResources = res.AffectedResources
	s.TopProcesses = res.TopProcesses
	s.TopEvents = res.TopEvents
}

// Clone returns a deep copy. Callers hand clones to consumers so the
// orchestrator's working copy is never aliased.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Events = append([]scenario.SecurityEvent(nil), s.Events...)
	out.AffectedResources = append([]scenario.CloudResource(nil), s.AffectedResources...)
	out.TopProcesses = append([]scenario.ChartPoint(nil), s.TopProcesses...)
	out.TopEvents = append([]scenario.ChartPoint(nil), s.TopEvents...)
	if s.Interaction != nil {
		ia := *s.Interaction
		ia.InteractionLog = append([]scenario.InteractionStep(nil), s.Interaction.InteractionLog...)
		out.Interaction = &ia
	}
	if s.Analysis.RecommendedActions != nil {
		out.Analysis.RecommendedActions = append([]string(nil), s.Analysis.RecommendedActions...)
	}
	return &out
}
