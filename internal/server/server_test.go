package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/threatstage/internal/gateway"
	"github.com/ppiankov/threatstage/internal/orchestrator"
	"github.com/ppiankov/threatstage/internal/playback"
	"github.com/ppiankov/threatstage/internal/scenario"
	"github.com/ppiankov/threatstage/internal/session"
)

type stubGateway struct {
	modelOut    *scenario.Result
	modelErr    error
	interactOut *scenario.InteractionAnalysis
	interactErr error
	scriptOut   string
	planOut     *scenario.ResponsePlan
}

func (g *stubGateway) GenerateScript(ctx context.Context, description string) (string, error) {
	return g.scriptOut, nil
}

func (g *stubGateway) ModelScenario(ctx context.Context, script string) (*scenario.Result, error) {
	if g.modelErr != nil {
		return nil, g.modelErr
	}
	out := *g.modelOut
	out.Events = append([]scenario.SecurityEvent(nil), g.modelOut.Events...)
	return &out, nil
}

func (g *stubGateway) AnalyzeInteraction(ctx context.Context, attack, defense string) (*scenario.InteractionAnalysis, error) {
	if g.interactErr != nil {
		return nil, g.interactErr
	}
	out := *g.interactOut
	return &out, nil
}

func (g *stubGateway) GenerateResponsePlan(ctx context.Context, event scenario.SecurityEvent) (*scenario.ResponsePlan, error) {
	return g.planOut, nil
}

func testResult(countermeasure string) *scenario.Result {
	return &scenario.Result{
		Analysis: scenario.Analysis{
			ExecutiveSummary:        "Exfiltration attempt via browser extension.",
			RiskScore:               70,
			SuggestedCountermeasure: countermeasure,
		},
		Events: []scenario.SecurityEvent{
			{ID: "evt-001", Severity: scenario.SeverityHigh, Description: "Suspicious read", Status: scenario.StatusInvestigating},
		},
		Metrics: scenario.Metrics{TotalEvents: 50, ActiveThreats: 2, BlockedAttacks: 20, DetectionAccuracy: "95%"},
	}
}

func testInteraction() *scenario.InteractionAnalysis {
	return &scenario.InteractionAnalysis{
		EffectivenessScore: 60,
		OutcomeSummary:     "Partial containment.",
		InteractionLog: []scenario.InteractionStep{
			{Step: 1, Actor: scenario.ActorAttack, Description: "probe", Result: "blocked"},
			{Step: 2, Actor: scenario.ActorDefense, Description: "isolate", Result: "ok"},
		},
	}
}

func newTestServer(t *testing.T, gw gateway.Analyzer) *Server {
	t.Helper()
	store := session.NewStore(nil, nil)
	orc := orchestrator.New(gw, store)
	player := playback.NewPlayer(playback.WithInterval(2 * time.Millisecond))
	return New("127.0.0.1:0", orc, player, nil)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &stubGateway{modelOut: testResult("")})
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" || body["state"] != "idle" {
		t.Errorf("body = %v", body)
	}
}

func TestStartRunReturnsReconciledSession(t *testing.T) {
	s := newTestServer(t, &stubGateway{
		modelOut:    testResult("block it"),
		interactOut: testInteraction(),
	})
	rec := doJSON(t, s, http.MethodPost, "/api/v1/runs", map[string]string{
		"script":      "attack.js",
		"description": "drill",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var sess session.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatal(err)
	}
	// 50 events, 60% effective: round(50/10 * 60/100) = 3.
	if sess.Metrics.BlockedAttacks != 3 {
		t.Errorf("blockedAttacks = %d, want 3", sess.Metrics.BlockedAttacks)
	}
	if sess.Interaction == nil {
		t.Error("interactionResult missing from response")
	}
}

func TestStartRunEmptyScriptIsBadRequest(t *testing.T) {
	s := newTestServer(t, &stubGateway{modelOut: testResult("")})
	rec := doJSON(t, s, http.MethodPost, "/api/v1/runs", map[string]string{"script": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStartRunUpstreamFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t, &stubGateway{modelErr: gateway.ErrUpstream})
	rec := doJSON(t, s, http.MethodPost, "/api/v1/runs", map[string]string{"script": "attack.js"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestCurrentRunLifecycle(t *testing.T) {
	s := newTestServer(t, &stubGateway{modelOut: testResult("")})

	rec := doJSON(t, s, http.MethodGet, "/api/v1/runs/current", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status before run = %d, want 404", rec.Code)
	}

	if rec := doJSON(t, s, http.MethodPost, "/api/v1/runs", map[string]string{"script": "attack.js"}); rec.Code != http.StatusOK {
		t.Fatalf("run failed: %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/v1/runs/current", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status after run = %d", rec.Code)
	}
	var body struct {
		State   string           `json:"state"`
		Session *session.Session `json:"session"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.State != "complete" || body.Session == nil {
		t.Errorf("state = %q, session nil = %v", body.State, body.Session == nil)
	}

	if rec := doJSON(t, s, http.MethodDelete, "/api/v1/runs/current", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodGet, "/api/v1/runs/current", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status after clear = %d, want 404", rec.Code)
	}
}

func TestPlaybackLogFillsOverTime(t *testing.T) {
	s := newTestServer(t, &stubGateway{
		modelOut:    testResult("block it"),
		interactOut: testInteraction(),
	})
	if rec := doJSON(t, s, http.MethodPost, "/api/v1/runs", map[string]string{"script": "attack.js"}); rec.Code != http.StatusOK {
		t.Fatalf("run failed: %d", rec.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec := doJSON(t, s, http.MethodGet, "/api/v1/runs/current/log", nil)
		var body struct {
			State string                     `json:"state"`
			Steps []scenario.InteractionStep `json:"steps"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.State == "done" {
			if len(body.Steps) != 2 {
				t.Fatalf("steps = %v, want 2 revealed", body.Steps)
			}
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("playback never completed")
}

func TestCountermeasureTestEndpoint(t *testing.T) {
	gw := &stubGateway{
		modelOut:    testResult("block it"),
		interactOut: testInteraction(),
	}
	s := newTestServer(t, gw)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/runs/current/test", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status with no session = %d, want 409", rec.Code)
	}

	if rec := doJSON(t, s, http.MethodPost, "/api/v1/runs", map[string]string{"script": "attack.js"}); rec.Code != http.StatusOK {
		t.Fatalf("run failed: %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPost, "/api/v1/runs/current/test", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var ia scenario.InteractionAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &ia); err != nil {
		t.Fatal(err)
	}
	if ia.EffectivenessScore != 60 {
		t.Errorf("effectivenessScore = %d", ia.EffectivenessScore)
	}
}

func TestEventStatusUpdate(t *testing.T) {
	s := newTestServer(t, &stubGateway{modelOut: testResult("")})
	if rec := doJSON(t, s, http.MethodPost, "/api/v1/runs", map[string]string{"script": "attack.js"}); rec.Code != http.StatusOK {
		t.Fatalf("run failed: %d", rec.Code)
	}

	rec := doJSON(t, s, http.MethodPost, "/api/v1/runs/current/events/evt-001/status", map[string]string{"status": "Contained"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/runs/current/events/evt-001/status", map[string]string{"status": "Investigating"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("disallowed status = %d, want 400", rec.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer(t, &stubGateway{modelOut: testResult("")})
	if rec := doJSON(t, s, http.MethodPost, "/api/v1/runs", map[string]string{"script": "attack.js"}); rec.Code != http.StatusOK {
		t.Fatalf("run failed: %d", rec.Code)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/v1/history", nil)
	var list []*session.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("history length = %d", len(list))
	}
	id := list[0].ID

	if rec := doJSON(t, s, http.MethodGet, "/api/v1/history/"+id, nil); rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodGet, "/api/v1/history/sess-absent", nil); rec.Code != http.StatusNotFound {
		t.Errorf("absent get status = %d", rec.Code)
	}

	if rec := doJSON(t, s, http.MethodPost, "/api/v1/history/"+id+"/load", nil); rec.Code != http.StatusOK {
		t.Errorf("load status = %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodPost, "/api/v1/history/sess-absent/load", nil); rec.Code != http.StatusNotFound {
		t.Errorf("absent load status = %d", rec.Code)
	}

	if rec := doJSON(t, s, http.MethodDelete, "/api/v1/history/"+id, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodDelete, "/api/v1/history", nil); rec.Code != http.StatusNoContent {
		t.Errorf("clear status = %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/v1/history", nil)
	list = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("history not empty after clear: %d", len(list))
	}
}

func TestGenerateScriptEndpoint(t *testing.T) {
	s := newTestServer(t, &stubGateway{modelOut: testResult(""), scriptOut: "# generated"})
	rec := doJSON(t, s, http.MethodPost, "/api/v1/scripts", map[string]string{"description": "token theft"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["script"] != "# generated" {
		t.Errorf("script = %q", body["script"])
	}
}

func TestResponsePlanEndpoint(t *testing.T) {
	s := newTestServer(t, &stubGateway{
		modelOut: testResult(""),
		planOut: &scenario.ResponsePlan{
			SuggestedSteps:  []string{"isolate host", "rotate keys", "review logs"},
			SuggestedStatus: scenario.PlanContained,
			Justification:   "Containment first.",
		},
	})
	rec := doJSON(t, s, http.MethodPost, "/api/v1/events/response-plan", scenario.SecurityEvent{
		ID:          "evt-001",
		Severity:    scenario.SeverityHigh,
		Description: "Suspicious read",
		Status:      scenario.StatusInvestigating,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var plan scenario.ResponsePlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatal(err)
	}
	if plan.SuggestedStatus != scenario.PlanContained || len(plan.SuggestedSteps) != 3 {
		t.Errorf("plan = %+v", plan)
	}
}
