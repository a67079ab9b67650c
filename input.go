package main

import (
	"math"
	"sync"
)

// InputSnapshot is the host-provided input state sampled once per tick.
// Press/release are edge flags; they are consumed the instant they are read.
type InputSnapshot struct {
	MoveX          float64
	MoveY          float64
	AimX           float64
	AimY           float64
	StrikePressed  bool
	StrikeHeld     bool
	StrikeReleased bool
}

// inputTracker accumulates host input between ticks. The hub writes into it
// from connection goroutines; the loop samples it exactly once per tick.
type inputTracker struct {
	mu      sync.Mutex
	pending InputSnapshot
}

func newInputTracker() *inputTracker {
	return &inputTracker{}
}

func (t *inputTracker) SetMove(dx, dy float64) {
	length := math.Hypot(dx, dy)
	if length > 1 {
		dx /= length
		dy /= length
	}
	t.mu.Lock()
	t.pending.MoveX = dx
	t.pending.MoveY = dy
	t.mu.Unlock()
}

func (t *inputTracker) SetAim(x, y float64) {
	t.mu.Lock()
	t.pending.AimX = x
	t.pending.AimY = y
	t.mu.Unlock()
}

func (t *inputTracker) Press() {
	t.mu.Lock()
	t.pending.StrikePressed = true
	t.pending.StrikeHeld = true
	t.mu.Unlock()
}

func (t *inputTracker) Release() {
	t.mu.Lock()
	t.pending.StrikeReleased = true
	t.pending.StrikeHeld = false
	t.mu.Unlock()
}

// sample returns the pending snapshot and clears the edge flags, guaranteeing
// at most one transition per flag per tick regardless of tick duration.
func (t *inputTracker) sample() InputSnapshot {
	t.mu.Lock()
	snap := t.pending
	t.pending.StrikePressed = false
	t.pending.StrikeReleased = false
	t.mu.Unlock()
	return snap
}

// reset clears all input, including held state, for a new run.
func (t *inputTracker) reset() {
	t.mu.Lock()
	t.pending = InputSnapshot{}
	t.mu.Unlock()
}
