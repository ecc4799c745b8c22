// Package alert fans out pipeline lifecycle events to configured webhook
// destinations. Dispatch is fire-and-forget and never blocks the pipeline.
package alert

// Event type names matched against webhook configurations.
const (
	EventScenarioComplete     = "scenario_complete"
	EventRunFailed            = "run_failed"
	EventCountermeasureTested = "countermeasure_tested"
)

// WebhookConfig defines one webhook alert destination.
type WebhookConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"`
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type          string `json:"type"`
	Timestamp     string `json:"timestamp"`
	SessionID     string `json:"session_id,omitempty"`
	SessionName   string `json:"session_name,omitempty"`
	RiskScore     int    `json:"risk_score,omitempty"`
	ActiveThreats int    `json:"active_threats,omitempty"`
	Effectiveness int    `json:"effectiveness,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Dispatcher fans out events to matching webhook configurations.
type Dispatcher struct {
	configs []WebhookConfig
}

// NewDispatcher creates a Dispatcher from webhook configurations.
// Returns nil if configs is empty (callers should nil-check).
func NewDispatcher(configs []WebhookConfig) *Dispatcher {
	if len(configs) == 0 {
		return nil
	}
	return &Dispatcher{configs: configs}
}

// Dispatch sends the event to all webhooks whose Events list includes its
// type. Fires goroutines — does not block the caller.
func (d *Dispatcher) Dispatch(event Event) {
	if d == nil {
		return
	}
	for _, cfg := range d.configs {
		if matches(cfg.Events, event.Type) {
			go func(cfg WebhookConfig) { _ = Send(cfg, event) }(cfg)
		}
	}
}

func matches(events []string, eventType string) bool {
	for _, e := range events {
		if e == eventType {
			return true
		}
	}
	return false
}
