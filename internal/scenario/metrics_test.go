package scenario

import "testing"

func TestReconcile(t *testing.T) {
	tests := []struct {
		name          string
		totalEvents   int
		effectiveness int
		wantBlocked   int
	}{
		{"eighty percent of hundred", 100, 80, 8},
		{"zero effectiveness", 100, 0, 0},
		{"full effectiveness", 100, 100, 10},
		{"rounds half up", 50, 90, 5},  // 4.5 -> 5
		{"rounds down", 30, 80, 2},     // 2.4 -> 2
		{"small event count", 7, 50, 0}, // 0.35 -> 0
		{"no events", 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := Metrics{
				TotalEvents:       tt.totalEvents,
				ActiveThreats:     12,
				BlockedAttacks:    9999,
				DetectionAccuracy: "99.7%",
			}
			got := Reconcile(raw, tt.effectiveness)
			if got.BlockedAttacks != tt.wantBlocked {
				t.Errorf("BlockedAttacks = %d, want %d", got.BlockedAttacks, tt.wantBlocked)
			}
			if got.TotalEvents != tt.totalEvents {
				t.Errorf("TotalEvents = %d, want %d (must pass through)", got.TotalEvents, tt.totalEvents)
			}
			if got.ActiveThreats != 12 {
				t.Errorf("ActiveThreats = %d, want 12 (must pass through)", got.ActiveThreats)
			}
			if got.DetectionAccuracy != "99.7%" {
				t.Errorf("DetectionAccuracy = %q, want unchanged", got.DetectionAccuracy)
			}
		})
	}
}

func TestReconcileDeterministic(t *testing.T) {
	raw := Metrics{TotalEvents: 137, ActiveThreats: 4, BlockedAttacks: 80, DetectionAccuracy: "97.2%"}
	first := Reconcile(raw, 63)
	second := Reconcile(raw, 63)
	if first != second {
		t.Errorf("Reconcile not deterministic: %+v vs %+v", first, second)
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	raw := Metrics{TotalEvents: 100, BlockedAttacks: 42}
	_ = Reconcile(raw, 80)
	if raw.BlockedAttacks != 42 {
		t.Errorf("input mutated: BlockedAttacks = %d", raw.BlockedAttacks)
	}
}
