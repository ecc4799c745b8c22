package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/threatstage/internal/scenario"
)

func stepLog(n int) []scenario.InteractionStep {
	log := make([]scenario.InteractionStep, n)
	for i := range log {
		log[i] = scenario.InteractionStep{
			Step:        i + 1,
			Actor:       scenario.ActorAttack,
			Description: "probe",
			Result:      "blocked",
		}
	}
	return log
}

func waitForState(t *testing.T, p *Player, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", p.State(), want)
}

func TestFirstStepRevealsImmediately(t *testing.T) {
	p := NewPlayer(WithInterval(time.Hour)) // next tick effectively never
	p.Play(stepLog(3))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(p.Revealed()) == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	got := p.Revealed()
	if len(got) != 1 || got[0].Step != 1 {
		t.Fatalf("revealed = %v, want exactly step 1", got)
	}
	if p.State() != StatePlaying {
		t.Errorf("state = %v, want %v", p.State(), StatePlaying)
	}
	p.Stop()
}

func TestAllStepsRevealInOrder(t *testing.T) {
	var mu sync.Mutex
	var order []int
	p := NewPlayer(
		WithInterval(5*time.Millisecond),
		WithOnStep(func(s scenario.InteractionStep) {
			mu.Lock()
			order = append(order, s.Step)
			mu.Unlock()
		}),
	)
	p.Play(stepLog(5))
	waitForState(t, p, StateDone)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 5 {
		t.Fatalf("revealed %d steps, want 5: %v", len(order), order)
	}
	for i, step := range order {
		if step != i+1 {
			t.Fatalf("out-of-order reveal: %v", order)
		}
	}
}

func TestRestartCancelsPreviousPlayback(t *testing.T) {
	p := NewPlayer(WithInterval(10 * time.Millisecond))
	p.Play(stepLog(100))

	// Let the first playback get going, then restart with a fresh log.
	time.Sleep(25 * time.Millisecond)
	replacement := []scenario.InteractionStep{
		{Step: 1, Actor: scenario.ActorDefense, Description: "patch", Result: "ok"},
		{Step: 2, Actor: scenario.ActorSystem, Description: "verify", Result: "ok"},
	}
	p.Play(replacement)
	waitForState(t, p, StateDone)

	got := p.Revealed()
	if len(got) != 2 {
		t.Fatalf("revealed %d steps after restart, want 2: %v", len(got), got)
	}
	for _, s := range got {
		if s.Actor == scenario.ActorAttack {
			t.Fatalf("step from cancelled playback surfaced: %+v", s)
		}
	}
	// No stragglers from the first run after it was cancelled.
	time.Sleep(50 * time.Millisecond)
	if n := len(p.Revealed()); n != 2 {
		t.Errorf("revealed grew to %d after done", n)
	}
}

func TestEmptyLogCompletesImmediately(t *testing.T) {
	p := NewPlayer()
	p.Play(nil)
	if p.State() != StateDone {
		t.Errorf("state = %v, want %v", p.State(), StateDone)
	}
	if len(p.Revealed()) != 0 {
		t.Errorf("revealed = %v, want empty", p.Revealed())
	}
}

func TestStopKeepsRevealedSteps(t *testing.T) {
	p := NewPlayer(WithInterval(5 * time.Millisecond))
	p.Play(stepLog(50))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(p.Revealed()) >= 3 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	p.Stop()
	n := len(p.Revealed())
	if n < 3 {
		t.Fatalf("revealed only %d steps before stop", n)
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want %v", p.State(), StateIdle)
	}

	time.Sleep(30 * time.Millisecond)
	if len(p.Revealed()) != n {
		t.Errorf("revealed grew from %d to %d after stop", n, len(p.Revealed()))
	}
}

func TestResetClearsRevealed(t *testing.T) {
	p := NewPlayer(WithInterval(5 * time.Millisecond))
	p.Play(stepLog(3))
	waitForState(t, p, StateDone)

	p.Reset()
	if len(p.Revealed()) != 0 {
		t.Errorf("revealed = %v after reset", p.Revealed())
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want %v", p.State(), StateIdle)
	}
}

func TestSingleStepLogCompletes(t *testing.T) {
	p := NewPlayer(WithInterval(time.Hour))
	p.Play(stepLog(1))
	waitForState(t, p, StateDone)
	if len(p.Revealed()) != 1 {
		t.Errorf("revealed = %v", p.Revealed())
	}
}
