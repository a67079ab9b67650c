package main

import (
	"math"
	"testing"
)

func TestInputEdgeFlagsConsumedOnce(t *testing.T) {
	tr := newInputTracker()
	tr.Press()

	first := tr.sample()
	if !first.StrikePressed || !first.StrikeHeld {
		t.Fatalf("press not visible on first sample: %+v", first)
	}
	second := tr.sample()
	if second.StrikePressed {
		t.Fatalf("press edge survived a second sample")
	}
	if !second.StrikeHeld {
		t.Fatalf("held state must persist between samples")
	}

	tr.Release()
	third := tr.sample()
	if !third.StrikeReleased || third.StrikeHeld {
		t.Fatalf("release not visible: %+v", third)
	}
	if tr.sample().StrikeReleased {
		t.Fatalf("release edge survived a second sample")
	}
}

func TestInputMoveVectorNormalized(t *testing.T) {
	tr := newInputTracker()

	tr.SetMove(3, 4)
	snap := tr.sample()
	if math.Abs(snap.MoveX-0.6) > 1e-9 || math.Abs(snap.MoveY-0.8) > 1e-9 {
		t.Fatalf("oversized move not normalized: (%.3f, %.3f)", snap.MoveX, snap.MoveY)
	}

	// Sub-unit input passes through untouched for analog movement.
	tr.SetMove(0.5, 0)
	snap = tr.sample()
	if snap.MoveX != 0.5 || snap.MoveY != 0 {
		t.Fatalf("analog move distorted: (%.3f, %.3f)", snap.MoveX, snap.MoveY)
	}
}

func TestInputResetClearsHeldState(t *testing.T) {
	tr := newInputTracker()
	tr.Press()
	tr.SetMove(1, 0)

	tr.reset()
	snap := tr.sample()
	if snap != (InputSnapshot{}) {
		t.Fatalf("reset left residual input: %+v", snap)
	}
}
