// Package scenario defines the structured output of the generative analysis
// pipeline — the threat analysis, security events, affected cloud resources,
// dashboard metrics, and engagement data produced for one attack script.
package scenario

// Severity classifies how serious a security event is.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// validSeverities is the set of recognized severity levels.
var validSeverities = map[Severity]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

// IsValidSeverity returns true if s is a recognized severity level.
func IsValidSeverity(s Severity) bool {
	return validSeverities[s]
}

// EventStatus is the triage state of a security event.
type EventStatus string

const (
	StatusInvestigating  EventStatus = "Investigating"
	StatusContained      EventStatus = "Contained"
	StatusResolved       EventStatus = "Resolved"
	StatusActionRequired EventStatus = "Action Required"
)

// validEventStatuses is the set of recognized event statuses.
var validEventStatuses = map[EventStatus]bool{
	StatusInvestigating:  true,
	StatusContained:      true,
	StatusResolved:       true,
	StatusActionRequired: true,
}

// IsValidEventStatus returns true if s is a recognized event status.
func IsValidEventStatus(s EventStatus) bool {
	return validEventStatuses[s]
}

// Provider identifies the cloud platform hosting an affected resource.
type Provider string

const (
	ProviderAWS   Provider = "AWS"
	ProviderAzure Provider = "Azure"
	ProviderGCP   Provider = "GCP"
)

// ResourceStatus is the security state of an affected cloud resource.
type ResourceStatus string

const (
	ResourceCompromised   ResourceStatus = "Compromised"
	ResourceVulnerable    ResourceStatus = "Vulnerable"
	ResourceInvestigating ResourceStatus = "Investigating"
	ResourceProtected     ResourceStatus = "Protected"
)

// Actor identifies which side performed an engagement step.
type Actor string

const (
	ActorAttack  Actor = "Attack"
	ActorDefense Actor = "Defense"
	ActorSystem  Actor = "System"
)

// SecurityEvent is one detection record generated by the modeled attack.
type SecurityEvent struct {
	ID          string      `json:"id"`
	Timestamp   string      `json:"timestamp"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	Status      EventStatus `json:"status"`
}

// CloudResource is a cloud asset the modeled attack touches.
type CloudResource struct {
	Name       string         `json:"name"`
	ResourceID string         `json:"resourceId"`
	Provider   Provider       `json:"provider"`
	Service    string         `json:"service"`
	Region     string         `json:"region"`
	Status     ResourceStatus `json:"status"`
	Reason     string         `json:"reasonForStatus"`
}

// Metrics holds the dashboard headline figures for one scenario.
// BlockedAttacks is an ungrounded model estimate until reconciled
// against a real countermeasure test (see Reconcile).
type Metrics struct {
	TotalEvents       int    `json:"totalEvents"`
	ActiveThreats     int    `json:"activeThreats"`
	BlockedAttacks    int    `json:"blockedAttacks"`
	DetectionAccuracy string `json:"detectionAccuracy"`
}

// ChartPoint is one ranked entry in a top-N chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Analysis is the threat assessment for one attack script.
type Analysis struct {
	ExecutiveSummary        string   `json:"executiveSummary"`
	TechnicalBreakdown      string   `json:"technicalBreakdown"`
	RiskScore               int      `json:"riskScore"`
	RecommendedActions      []string `json:"recommendedActions"`
	SuggestedCountermeasure string   `json:"suggestedCountermeasure"`
}

// Result is the full structured output of modeling one attack script.
type Result struct {
	Analysis          Analysis        `json:"analysis"`
	Events            []SecurityEvent `json:"events"`
	Metrics           Metrics         `json:"metrics"`
	AffectedResources []CloudResource `json:"affectedResources"`
	TopProcesses      []ChartPoint    `json:"topProcesses"`
	TopEvents         []ChartPoint    `json:"topEvents"`
}

// InteractionStep is one entry in the simulated attack/defense engagement.
type InteractionStep struct {
	Step        int    `json:"step"`
	Actor       Actor  `json:"action"`
	Description string `json:"description"`
	Result      string `json:"result"`
}

// InteractionAnalysis is the outcome of testing a countermeasure script
// against the original attack script.
type InteractionAnalysis struct {
	EffectivenessScore    int               `json:"effectivenessScore"`
	OutcomeSummary        string            `json:"outcomeSummary"`
	ModifiedDefenseScript string            `json:"modifiedDefenseScript"`
	InteractionLog        []InteractionStep `json:"interactionLog"`
}

// RenumberLog rewrites interaction step numbers to be contiguous from 1.
// Models occasionally return gaps or zero-based numbering.
func (ia *InteractionAnalysis) RenumberLog() {
	for i := range ia.InteractionLog {
		ia.InteractionLog[i].Step = i + 1
	}
}

// PlanStatus is the status a response plan recommends moving an event to.
type PlanStatus string

const (
	PlanContained PlanStatus = "Contained"
	PlanResolved  PlanStatus = "Resolved"
)

// ResponsePlan is a generated incident response playbook for one event.
type ResponsePlan struct {
	SuggestedSteps  []string   `json:"suggestedSteps"`
	SuggestedStatus PlanStatus `json:"suggestedStatus"`
	Justification   string     `json:"justification"`
}
