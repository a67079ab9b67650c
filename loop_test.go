package main

import (
	"math"
	"testing"

	"apex-arena/sim/tuning"
)

func newTestLoop(cb Callbacks) *Loop {
	return NewLoop(tuning.Default(), nil, cb, nil)
}

func TestLoopStartsWithResolvedPlayer(t *testing.T) {
	l := newTestLoop(Callbacks{})
	st := l.State()

	if st.Status != StatusPlaying {
		t.Fatalf("status = %s, want playing", st.Status)
	}
	if st.Player.MaxHealth != 120 || st.Player.Health != 120 {
		t.Fatalf("player health = %.1f/%.1f, want 120/120", st.Player.Health, st.Player.MaxHealth)
	}
	if st.Player.X != 800 || st.Player.Y != 600 {
		t.Fatalf("player not centered: (%.0f, %.0f)", st.Player.X, st.Player.Y)
	}
}

func TestLoopReapsDefeatedEnemies(t *testing.T) {
	l := newTestLoop(Callbacks{})
	l.state.Enemies = []Enemy{
		{ID: 1, Health: 0, MaxHealth: 30, X: 100, Y: 100, KillScore: 10},
		{ID: 2, Health: 30, MaxHealth: 30, X: 200, Y: 200, MoveSpeed: 150, KillScore: 10},
	}

	st := l.Tick(33)
	if st.Score != 10 || st.Kills != 1 {
		t.Fatalf("reap rewards: score=%d kills=%d, want 10 and 1", st.Score, st.Kills)
	}
	for _, e := range st.Enemies {
		if e.ID == 1 {
			t.Fatalf("defeated enemy survived the reap")
		}
	}
}

func TestLoopGameOverLatchesOnce(t *testing.T) {
	deaths := 0
	var report DeathReport
	l := newTestLoop(Callbacks{GameOver: func(r DeathReport) {
		deaths++
		report = r
	}})
	l.state.Player.Health = 1
	l.state.Enemies = []Enemy{{
		ID: 1, Health: 50, MaxHealth: 50,
		X: l.state.Player.X, Y: l.state.Player.Y,
		Radius: 10, ContactDamage: 1000,
	}}

	st := l.Tick(33)
	if st.Status != StatusGameOver {
		t.Fatalf("status = %s, want gameover", st.Status)
	}
	if st.Player.Health != 0 {
		t.Fatalf("health clamps at zero, got %.2f", st.Player.Health)
	}
	if deaths != 1 {
		t.Fatalf("game-over callback fired %d times", deaths)
	}
	if report.Cause == "" {
		t.Fatalf("death report missing a cause")
	}

	// Ticks after death are inert and never re-fire the callback.
	before := st.Tick
	st = l.Tick(33)
	if st.Tick != before || deaths != 1 {
		t.Fatalf("loop advanced after game over: tick=%d deaths=%d", st.Tick, deaths)
	}
}

func TestLoopPauseGatesTicks(t *testing.T) {
	l := newTestLoop(Callbacks{})
	l.Tick(33)
	before := l.State().Tick

	l.Pause()
	if st := l.Tick(33); st.Tick != before {
		t.Fatalf("paused loop advanced to tick %d", st.Tick)
	}
	l.Resume()
	if st := l.Tick(33); st.Tick != before+1 {
		t.Fatalf("resumed loop at tick %d, want %d", st.Tick, before+1)
	}
}

func TestLoopResetStartsFreshRun(t *testing.T) {
	l := newTestLoop(Callbacks{})
	for i := 0; i < 5; i++ {
		l.Tick(33)
	}
	l.state.Player.Health = 40
	l.state.Score = 99

	l.Reset()
	st := l.State()
	if st.Tick != 0 || st.Wave != 0 || st.Score != 0 {
		t.Fatalf("reset kept progress: %+v", st)
	}
	if st.Status != StatusPlaying || st.Player.Health != 120 {
		t.Fatalf("reset did not restore the player: %+v", st.Player)
	}
}

func TestLoopLevelUpPausesForOffer(t *testing.T) {
	var offered *UpgradeOffer
	l := newTestLoop(Callbacks{LevelUp: func(o UpgradeOffer) {
		offered = &o
	}})
	l.state.Score = 250

	st := l.Tick(33)
	if st.Status != StatusUpgrade {
		t.Fatalf("status = %s, want upgrade", st.Status)
	}
	if offered == nil || offered.Level != 1 || len(offered.Choices) == 0 {
		t.Fatalf("level-up callback offer = %+v", offered)
	}
	pending := l.PendingOffer()
	if pending == nil || len(pending.Choices) != len(offered.Choices) {
		t.Fatalf("pending offer out of sync: %+v", pending)
	}

	// The simulation holds still until a choice is made.
	before := st.Tick
	if st := l.Tick(33); st.Tick != before {
		t.Fatalf("loop advanced during an open offer")
	}
}

func TestLoopApplyUpgradeResumesPlay(t *testing.T) {
	l := newTestLoop(Callbacks{})
	l.state.Score = 250
	l.Tick(33)

	if l.ApplyUpgrade("not-a-choice") {
		t.Fatalf("accepted a choice outside the offer")
	}
	offer := l.PendingOffer()
	if offer == nil {
		t.Fatalf("no pending offer")
	}
	if !l.ApplyUpgrade(offer.Choices[0].ID) {
		t.Fatalf("valid choice rejected")
	}

	st := l.State()
	if st.Status != StatusPlaying {
		t.Fatalf("status after choice = %s, want playing", st.Status)
	}
	if l.PendingOffer() != nil {
		t.Fatalf("offer still pending after apply")
	}
	if l.ApplyUpgrade(offer.Choices[0].ID) {
		t.Fatalf("apply must fail once the offer is consumed")
	}
}

func TestLoopKnockbackScaledByResist(t *testing.T) {
	l := newTestLoop(Callbacks{})

	// Base player carapace 20 resists 8 percent of incoming force.
	l.applyKnockback(KnockbackState{Active: true, DirX: 1, Force: 100})
	kb := l.state.Player.Knockback
	if math.Abs(kb.Force-92) > 1e-9 {
		t.Fatalf("resisted force = %.3f, want 92", kb.Force)
	}
	want := 92 * l.cfg.Formation.KnockbackSecondsPer
	if math.Abs(kb.Duration-want) > 1e-9 || kb.Remaining != kb.Duration {
		t.Fatalf("knockback duration = %.4f, want %.4f", kb.Duration, want)
	}
}

func TestLoopFrameDeltaClamped(t *testing.T) {
	l := newTestLoop(Callbacks{})

	st := l.Tick(5000) // absurd frame delta
	max := l.cfg.Clock.MaxFrameDeltaMs / 1000
	if st.Elapsed > max+1e-9 {
		t.Fatalf("elapsed %.3fs after one tick, clamp is %.3fs", st.Elapsed, max)
	}
}
