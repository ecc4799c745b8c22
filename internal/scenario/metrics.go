package scenario

import "math"

// Reconcile replaces the model's ungrounded blocked-attacks estimate with a
// figure derived from a measured countermeasure effectiveness score (0-100):
//
//	blocked = round((totalEvents / 10) * (effectiveness / 100))
//
// All other fields pass through unchanged. Pure function — callers keep the
// raw metrics when no effectiveness score is available.
func Reconcile(raw Metrics, effectiveness int) Metrics {
	out := raw
	out.BlockedAttacks = int(math.Round(float64(raw.TotalEvents) / 10 * float64(effectiveness) / 100))
	return out
}
