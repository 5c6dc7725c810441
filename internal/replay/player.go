// Package replay drives a finalized recording forward through time.
//
// Player is the timed variant: a cooperative state machine
// (Idle → Playing ⇄ Paused → Finished) whose only suspension points are the
// scaled waits between events and the poll while paused. Cancellation is
// checked at those boundaries and nowhere else, so no partially-applied
// event exists after a cancel. Cursor is the interactive variant: seek,
// step, and rewind with no timing at all.
package replay

import (
	"context"
	"sync"
	"time"

	"github.com/lumenlearn/codetape/internal/tape"
)

// Speed bounds for timed replay. Requested speeds are clamped, not rejected.
const (
	MinSpeed = 0.1
	MaxSpeed = 10.0
)

// pausePollInterval is how often a paused player re-checks for resume or
// cancellation.
const pausePollInterval = 20 * time.Millisecond

// State is the player lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// OnEvent receives each applied event in log order.
type OnEvent func(tape.RecordedEvent)

// Player replays one recording once. Construct a fresh Player to replay
// again; Finished is terminal.
//
// Pause, Resume, SetSpeed, and Stop may be called from other goroutines
// while Play runs; they take effect at the next wait point. The cursor,
// speed, and pause state are otherwise single-caller.
type Player struct {
	rec *tape.Recording

	mu     sync.Mutex
	state  State
	speed  float64
	stopCh chan struct{}

	// sleep is swapped out by tests for instant, counted waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithSleepFunc replaces the wait primitive. The function must honor ctx
// cancellation. Tests use this to replay without real time passing.
func WithSleepFunc(sleep func(ctx context.Context, d time.Duration) error) PlayerOption {
	return func(p *Player) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// NewPlayer creates an idle player over a finalized recording.
func NewPlayer(rec *tape.Recording, opts ...PlayerOption) *Player {
	p := &Player{
		rec:    rec,
		state:  StateIdle,
		speed:  1.0,
		stopCh: make(chan struct{}),
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Speed returns the current clamped speed factor.
func (p *Player) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// SetSpeed changes the speed factor, clamped to [MinSpeed, MaxSpeed].
// Takes effect at the next wait point.
func (p *Player) SetSpeed(speed float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = clampSpeed(speed)
}

// Pause suspends waiting before the next event. No-op unless playing.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePlaying {
		p.state = StatePaused
	}
}

// Resume continues a paused replay.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePaused {
		p.state = StatePlaying
	}
}

// Stop aborts the replay at the next wait or poll boundary. Idempotent.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
}

// Play runs the replay loop on the calling goroutine. The first event's
// snapshot is applied immediately; each subsequent event is applied after
// (Δtimestamp / speed) has elapsed. onEvent is invoked synchronously for
// every applied event.
//
// Play returns nil when the log is exhausted or Stop was called, and
// ctx.Err() when the context is cancelled mid-wait. Either way the player
// transitions to Finished and cannot be reused.
func (p *Player) Play(ctx context.Context, speed float64, onEvent OnEvent) error {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return &tape.MisuseError{Op: "Play", State: p.state.String()}
	}
	p.state = StatePlaying
	p.speed = clampSpeed(speed)
	p.mu.Unlock()

	defer p.finish()

	// Stop aborts any in-flight wait by cancelling the derived context.
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-p.stopCh:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	prev := 0.0
	for i, ev := range p.rec.Events {
		if i > 0 {
			if err := p.waitBetween(waitCtx, ev.Timestamp-prev); err != nil {
				if stopped(p.stopCh) {
					return nil
				}
				return err
			}
		}
		if stopped(p.stopCh) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if onEvent != nil {
			onEvent(ev)
		}
		prev = ev.Timestamp
	}
	return nil
}

// waitBetween sleeps the scaled gap, splitting the wait whenever the player
// is paused and re-reading speed after every poll so SetSpeed applies to
// the remainder of the gap.
func (p *Player) waitBetween(ctx context.Context, gap float64) error {
	if gap < 0 {
		gap = 0
	}
	remaining := gap
	for remaining > 0 {
		p.mu.Lock()
		state, speed := p.state, p.speed
		p.mu.Unlock()

		if state == StatePaused {
			if err := p.sleep(ctx, pausePollInterval); err != nil {
				return err
			}
			continue
		}

		d := time.Duration(remaining / speed * float64(time.Second))
		if err := p.sleep(ctx, d); err != nil {
			return err
		}
		remaining = 0
	}
	return nil
}

func (p *Player) finish() {
	p.mu.Lock()
	p.state = StateFinished
	p.mu.Unlock()
}

func clampSpeed(speed float64) float64 {
	if speed < MinSpeed {
		return MinSpeed
	}
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}

func stopped(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// sleepCtx waits d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
