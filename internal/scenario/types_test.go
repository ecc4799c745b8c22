package scenario

import "testing"

func TestIsValidSeverity(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if !IsValidSeverity(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if IsValidSeverity("critical") {
		t.Error("severity matching must be case-sensitive")
	}
	if IsValidSeverity("") {
		t.Error("empty severity must be invalid")
	}
}

func TestIsValidEventStatus(t *testing.T) {
	for _, s := range []EventStatus{StatusInvestigating, StatusContained, StatusResolved, StatusActionRequired} {
		if !IsValidEventStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if IsValidEventStatus("Escalated") {
		t.Error("unknown status must be invalid")
	}
}

func TestRenumberLog(t *testing.T) {
	ia := InteractionAnalysis{
		InteractionLog: []InteractionStep{
			{Step: 0, Actor: ActorSystem, Description: "simulation starting"},
			{Step: 4, Actor: ActorAttack, Description: "port scan"},
			{Step: 4, Actor: ActorDefense, Description: "block rule applied"},
		},
	}
	ia.RenumberLog()
	for i, step := range ia.InteractionLog {
		if step.Step != i+1 {
			t.Errorf("step %d numbered %d, want %d", i, step.Step, i+1)
		}
	}
}

func TestRenumberLogEmpty(t *testing.T) {
	ia := InteractionAnalysis{}
	ia.RenumberLog() // must not panic
	if len(ia.InteractionLog) != 0 {
		t.Errorf("unexpected log entries: %d", len(ia.InteractionLog))
	}
}
