// Package playback reveals an interaction log step by step on a fixed
// cadence, so consumers can render the attack/defense engagement as a
// live exchange instead of a static dump.
package playback

import (
	"sync"
	"time"

	"github.com/ppiankov/threatstage/internal/scenario"
)

// DefaultInterval is the pause between revealed steps.
const DefaultInterval = 750 * time.Millisecond

// State is the player's position in its lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StateDone    State = "done"
)

// Player reveals interaction steps one at a time. Starting a new playback
// cancels the previous one; steps from a cancelled playback never surface
// after the restart. Safe for concurrent use.
type Player struct {
	mu       sync.Mutex
	interval time.Duration
	onStep   func(scenario.InteractionStep)

	state    State
	revealed []scenario.InteractionStep
	pending  []scenario.InteractionStep
	gen      uint64
	stop     chan struct{}
}

// Option configures a Player.
type Option func(*Player)

// WithInterval overrides the reveal cadence.
func WithInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithOnStep registers a callback fired for each revealed step. The
// callback runs on the player goroutine and must not call back into the
// player.
func WithOnStep(fn func(scenario.InteractionStep)) Option {
	return func(p *Player) { p.onStep = fn }
}

// NewPlayer creates an idle player.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		interval: DefaultInterval,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play starts revealing the given log from the beginning. Any playback in
// progress is cancelled first. The first step appears immediately; each
// subsequent step follows one interval later. An empty log completes
// immediately.
func (p *Player) Play(log []scenario.InteractionStep) {
	p.mu.Lock()
	p.cancelLocked()
	gen := p.gen
	p.revealed = nil
	p.pending = append([]scenario.InteractionStep(nil), log...)
	if len(p.pending) == 0 {
		p.state = StateDone
		p.mu.Unlock()
		return
	}
	p.state = StatePlaying
	stop := make(chan struct{})
	p.stop = stop
	p.mu.Unlock()

	go p.run(gen, stop)
}

// Stop cancels playback in progress. Already-revealed steps stay visible.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
	if p.state == StatePlaying {
		p.state = StateIdle
	}
}

// Reset cancels playback and clears revealed steps.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
	p.revealed = nil
	p.pending = nil
	p.state = StateIdle
}

// Revealed returns a copy of the steps revealed so far, in order.
func (p *Player) Revealed() []scenario.InteractionStep {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]scenario.InteractionStep(nil), p.revealed...)
}

// State returns the player's lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) run(gen uint64, stop chan struct{}) {
	// First step right away, the rest on the ticker.
	if !p.reveal(gen) {
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !p.reveal(gen) {
				return
			}
		}
	}
}

// reveal moves one step from pending to revealed. Returns false when this
// playback is finished or has been superseded.
func (p *Player) reveal(gen uint64) bool {
	p.mu.Lock()
	if gen != p.gen || len(p.pending) == 0 {
		p.mu.Unlock()
		return false
	}
	step := p.pending[0]
	p.pending = p.pending[1:]
	p.revealed = append(p.revealed, step)
	done := len(p.pending) == 0
	if done {
		p.state = StateDone
		p.stop = nil
	}
	onStep := p.onStep
	p.mu.Unlock()

	if onStep != nil {
		onStep(step)
	}
	return !done
}

// cancelLocked signals the active playback goroutine, if any, and bumps
// the generation so a tick already in flight cannot reveal a stale step.
// Caller holds the lock.
func (p *Player) cancelLocked() {
	p.gen++
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}
