// Package orchestrator drives the multi-stage scenario pipeline: generate
// (optional) → model → test countermeasure → reconcile metrics → persist.
// It owns the single current session and the run state; history belongs to
// the session store.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/threatstage/internal/alert"
	"github.com/ppiankov/threatstage/internal/gateway"
	"github.com/ppiankov/threatstage/internal/scenario"
	"github.com/ppiankov/threatstage/internal/session"
)

// State is the pipeline position of the current run.
type State string

const (
	StateIdle        State = "idle"
	StateGenerating  State = "generating"
	StateModeling    State = "modeling"
	StateReconciling State = "reconciling_metrics"
	StateComplete    State = "complete"
	StateErrored     State = "errored"
)

// ErrSuperseded is returned to a run whose results arrived after a newer
// run (or a load/clear) took over. Last start wins; stale results are
// discarded, never merged.
var ErrSuperseded = errors.New("run superseded by a newer one")

// ErrNoSession is returned when an operation needs a completed session and
// there is none.
var ErrNoSession = errors.New("no completed session")

// ErrNoCountermeasure is returned when a countermeasure test is requested
// but the current session has no countermeasure script.
var ErrNoCountermeasure = errors.New("session has no countermeasure script")

// Orchestrator sequences gateway calls for one scenario at a time.
// Safe for concurrent use; overlapping runs supersede each other.
type Orchestrator struct {
	mu      sync.Mutex
	gw      gateway.Analyzer
	store   *session.Store
	alerts  *alert.Dispatcher
	logger  *slog.Logger
	state   State
	runID   uint64
	current *session.Session
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAlerts attaches a webhook dispatcher for lifecycle events.
func WithAlerts(d *alert.Dispatcher) Option {
	return func(o *Orchestrator) { o.alerts = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator over the given analysis backend and store.
func New(gw gateway.Analyzer, store *session.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gw:     gw,
		store:  store,
		logger: slog.Default(),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateScript produces a simulated attack script from a description.
// Failure returns the orchestrator to its previous state; no session is
// created either way.
func (o *Orchestrator) GenerateScript(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("%w: empty description", gateway.ErrInvalidInput)
	}

	o.mu.Lock()
	prev := o.state
	o.state = StateGenerating
	o.mu.Unlock()

	script, err := o.gw.GenerateScript(ctx, description)

	o.mu.Lock()
	if o.state == StateGenerating {
		if prev == StateGenerating {
			prev = StateIdle
		}
		o.state = prev
	}
	o.mu.Unlock()

	if err != nil {
		return "", err
	}
	return script, nil
}

// StartSimulation runs the full pipeline for one attack script. It blocks
// until the run completes, fails, or is superseded by a newer start.
// On success the completed session has been appended to history.
func (o *Orchestrator) StartSimulation(ctx context.Context, script, description string) (*session.Session, error) {
	if strings.TrimSpace(script) == "" {
		return nil, fmt.Errorf("%w: empty script", gateway.ErrInvalidInput)
	}

	o.mu.Lock()
	o.runID++
	run := o.runID
	o.state = StateModeling
	o.current = session.New(script, description)
	o.mu.Unlock()

	result, err := o.gw.ModelScenario(ctx, script)

	o.mu.Lock()
	if run != o.runID {
		o.mu.Unlock()
		return nil, ErrSuperseded
	}
	if err != nil {
		// Fatal to this run: no partial session survives.
		o.state = StateErrored
		o.current = nil
		o.mu.Unlock()
		o.dispatch(alert.Event{
			Type:      alert.EventRunFailed,
			Timestamp: timestamp(),
			Reason:    err.Error(),
		})
		return nil, err
	}

	o.current.ApplyResult(result)
	countermeasure := result.Analysis.SuggestedCountermeasure
	if strings.TrimSpace(countermeasure) == "" {
		// Nothing to test against; raw metrics stand.
		done := o.completeLocked()
		o.mu.Unlock()
		o.announceComplete(done)
		return done, nil
	}
	o.state = StateReconciling
	o.mu.Unlock()

	interaction, ierr := o.gw.AnalyzeInteraction(ctx, script, countermeasure)

	o.mu.Lock()
	if run != o.runID {
		o.mu.Unlock()
		return nil, ErrSuperseded
	}
	if ierr != nil {
		// A failed effectiveness test must not block scenario delivery:
		// keep the model's raw metrics and complete anyway.
		o.logger.Warn("interaction analysis failed, keeping raw metrics", "error", ierr)
	} else {
		o.applyInteractionLocked(interaction)
	}
	done := o.completeLocked()
	o.mu.Unlock()

	o.announceComplete(done)
	return done, nil
}

// TestCountermeasure re-runs the interaction stage against the current
// completed session. On success the session is updated in place — in the
// current view and, when present, in history — keeping its id, timestamp,
// and position.
func (o *Orchestrator) TestCountermeasure(ctx context.Context) (*scenario.InteractionAnalysis, error) {
	o.mu.Lock()
	if o.current == nil || o.state != StateComplete {
		o.mu.Unlock()
		return nil, ErrNoSession
	}
	if strings.TrimSpace(o.current.Analysis.SuggestedCountermeasure) == "" {
		o.mu.Unlock()
		return nil, ErrNoCountermeasure
	}
	run := o.runID
	id := o.current.ID
	attack := o.current.Script
	defense := o.current.Analysis.SuggestedCountermeasure
	name := o.current.Name
	o.mu.Unlock()

	interaction, err := o.gw.AnalyzeInteraction(ctx, attack, defense)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if run != o.runID || o.current == nil || o.current.ID != id {
		o.mu.Unlock()
		return nil, ErrSuperseded
	}
	o.applyInteractionLocked(interaction)
	if err := o.store.UpdateInPlace(id, func(s *session.Session) {
		s.Interaction = o.current.Interaction
		s.Metrics = o.current.Metrics
		s.Analysis = o.current.Analysis
	}); err != nil && !errors.Is(err, session.ErrNotFound) {
		o.logger.Warn("history update failed", "session", id, "error", err)
	}
	o.mu.Unlock()

	o.dispatch(alert.Event{
		Type:          alert.EventCountermeasureTested,
		Timestamp:     timestamp(),
		SessionID:     id,
		SessionName:   name,
		Effectiveness: interaction.EffectivenessScore,
	})
	return interaction, nil
}

// UpdateEventStatus marks one event of the current session Contained or
// Resolved, in the current view and in history when the session is there.
func (o *Orchestrator) UpdateEventStatus(eventID string, status scenario.EventStatus) error {
	if status != scenario.StatusContained && status != scenario.StatusResolved {
		return fmt.Errorf("status must be %q or %q", scenario.StatusContained, scenario.StatusResolved)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return ErrNoSession
	}
	found := false
	for i := range o.current.Events {
		if o.current.Events[i].ID == eventID {
			o.current.Events[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("event %q not in current session", eventID)
	}
	events := o.current.Events
	if err := o.store.UpdateInPlace(o.current.ID, func(s *session.Session) {
		s.Events = append([]scenario.SecurityEvent(nil), events...)
	}); err != nil && !errors.Is(err, session.ErrNotFound) {
		o.logger.Warn("history update failed", "session", o.current.ID, "error", err)
	}
	return nil
}

// ClearSimulation drops the current session and returns to Idle. Any
// in-flight run is superseded.
func (o *Orchestrator) ClearSimulation() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runID++
	o.current = nil
	o.state = StateIdle
}

// LoadFromHistory makes a past session current. Any in-flight run is
// superseded.
func (o *Orchestrator) LoadFromHistory(id string) (*session.Session, error) {
	sess, err := o.store.Get(id)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	o.runID++
	o.current = sess
	o.state = StateComplete
	o.mu.Unlock()
	return sess.Clone(), nil
}

// ClearHistory empties the session history. The current session is kept.
func (o *Orchestrator) ClearHistory() {
	o.store.Clear()
}

// RemoveFromHistory deletes one history entry.
func (o *Orchestrator) RemoveFromHistory(id string) {
	o.store.Remove(id)
}

// Current returns a copy of the current session, or nil.
func (o *Orchestrator) Current() *session.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current.Clone()
}

// History returns a copy of the session history, newest first.
func (o *Orchestrator) History() []*session.Session {
	return o.store.List()
}

// State returns the pipeline state of the current run.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SetAlerts swaps the webhook dispatcher. Used by configuration hot reload.
func (o *Orchestrator) SetAlerts(d *alert.Dispatcher) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.alerts = d
}

// GenerateResponsePlan builds a response plan for one event of the current
// session. Pass-through to the gateway; no session state changes.
func (o *Orchestrator) GenerateResponsePlan(ctx context.Context, event scenario.SecurityEvent) (*scenario.ResponsePlan, error) {
	return o.gw.GenerateResponsePlan(ctx, event)
}

// applyInteractionLocked folds an interaction result into the current
// session: reconciled metrics, stored log, and adoption of the revised
// countermeasure when the model produced one. Caller holds the lock.
func (o *Orchestrator) applyInteractionLocked(ia *scenario.InteractionAnalysis) {
	o.current.Interaction = ia
	o.current.Metrics = scenario.Reconcile(o.current.Metrics, ia.EffectivenessScore)
	if strings.TrimSpace(ia.ModifiedDefenseScript) != "" {
		o.current.Analysis.SuggestedCountermeasure = ia.ModifiedDefenseScript
	}
}

// completeLocked marks the run complete, appends the session to history,
// and returns a copy for the caller. Caller holds the lock.
func (o *Orchestrator) completeLocked() *session.Session {
	o.state = StateComplete
	o.store.Append(o.current)
	return o.current.Clone()
}

func (o *Orchestrator) announceComplete(sess *session.Session) {
	o.dispatch(alert.Event{
		Type:          alert.EventScenarioComplete,
		Timestamp:     timestamp(),
		SessionID:     sess.ID,
		SessionName:   sess.Name,
		RiskScore:     sess.Analysis.RiskScore,
		ActiveThreats: sess.Metrics.ActiveThreats,
	})
}

func (o *Orchestrator) dispatch(event alert.Event) {
	o.mu.Lock()
	d := o.alerts
	o.mu.Unlock()
	if d != nil {
		d.Dispatch(event)
	}
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
