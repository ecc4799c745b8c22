package alert

import (
	"encoding/json"
	"fmt"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event Event) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return json.Marshal(event)
	}
}

func formatSlack(event Event) ([]byte, error) {
	fields := []any{
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Session:* %s", event.SessionName)},
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Risk Score:* %d/100", event.RiskScore)},
	}
	if event.Type == EventCountermeasureTested {
		fields = append(fields, map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Effectiveness:* %d/100", event.Effectiveness)})
	}
	if event.Reason != "" {
		fields = append(fields, map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Reason:* %s", event.Reason)})
	}

	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("threatstage: %s", event.Type),
				},
			},
			map[string]any{
				"type":   "section",
				"fields": fields,
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event Event) ([]byte, error) {
	severity := "info"
	switch {
	case event.Type == EventRunFailed:
		severity = "error"
	case event.RiskScore >= 80:
		severity = "critical"
	case event.RiskScore >= 50:
		severity = "warning"
	}

	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("threatstage %s: %s", event.Type, event.SessionName),
			"severity": severity,
			"source":   "threatstage",
			"custom_details": map[string]any{
				"session_id":     event.SessionID,
				"risk_score":     event.RiskScore,
				"active_threats": event.ActiveThreats,
				"effectiveness":  event.Effectiveness,
				"reason":         event.Reason,
			},
		},
	}
	return json.Marshal(payload)
}
