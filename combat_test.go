package main

import (
	"math"
	"testing"

	"apex-arena/sim/tuning"
)

func testCombatResolver() *combatResolver {
	cfg := tuning.Default()
	return newCombatResolver(cfg.Melee, cfg.Arena, nil)
}

func combatEventsOfKind(events []CombatEvent, kind CombatEventKind) []CombatEvent {
	var out []CombatEvent
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// driveSwing advances the resolver through a swing against the given state,
// collecting events. Ticks advance the way the loop would advance them.
func driveSwing(r *combatResolver, st *GameState, ev *tickEvents, ticks int) {
	for i := 0; i < ticks; i++ {
		st.Tick++
		r.update(st, 1, 1, 0.05, ev)
	}
}

func TestMeleeHitsEachEnemyOncePerSwing(t *testing.T) {
	r := testCombatResolver()
	st := &GameState{Tick: 1, Player: PlayerState{X: 400, Y: 300, FacingX: 1}}
	st.Enemies = []Enemy{{ID: 1, Health: 100, MaxHealth: 100, X: 430, Y: 300, Radius: 10}}
	var ev tickEvents

	driveSwing(r, st, &ev, 12) // windup + full active window

	hits := combatEventsOfKind(ev.combats, CombatHit)
	if len(hits) != 1 {
		t.Fatalf("enemy hit %d times in one swing, want 1", len(hits))
	}
	if got := st.Enemies[0].Health; math.Abs(got-84) > 1e-9 {
		t.Fatalf("health after one hit = %.3f, want 84", got)
	}
}

func TestMeleeRespectsArc(t *testing.T) {
	r := testCombatResolver()
	st := &GameState{Tick: 1, Player: PlayerState{X: 400, Y: 300, FacingX: 1}}
	// Nearest enemy in front fixes the swing direction; the one behind is
	// inside range but outside the arc.
	st.Enemies = []Enemy{
		{ID: 1, Health: 100, MaxHealth: 100, X: 430, Y: 300, Radius: 10},
		{ID: 2, Health: 100, MaxHealth: 100, X: 360, Y: 300, Radius: 10},
	}
	var ev tickEvents

	driveSwing(r, st, &ev, 12)

	for _, hit := range combatEventsOfKind(ev.combats, CombatHit) {
		if hit.EnemyID == 2 {
			t.Fatalf("enemy behind the swing arc was hit")
		}
	}
	if st.Enemies[1].Health != 100 {
		t.Fatalf("enemy behind the arc took damage")
	}
}

func TestExecutionChainRepositionsAndResets(t *testing.T) {
	r := testCombatResolver()
	st := &GameState{Tick: 1, Player: PlayerState{X: 400, Y: 300, FacingX: 1}}
	st.Enemies = []Enemy{
		{ID: 1, Health: 1, MaxHealth: 100, X: 430, Y: 300, Radius: 10},  // execute target
		{ID: 2, Health: 30, MaxHealth: 100, X: 600, Y: 300, Radius: 10}, // wounded follow-up
	}
	var ev tickEvents

	driveSwing(r, st, &ev, 5) // windup plus the first active tick

	chains := combatEventsOfKind(ev.combats, CombatExecutionChain)
	if len(chains) != 1 {
		t.Fatalf("expected one execution chain, got %d", len(chains))
	}
	if r.phase != meleeIdle || r.cooldown != 0 {
		t.Fatalf("execution chain should reset the swing; phase=%v cooldown=%.2f", r.phase, r.cooldown)
	}
	dist := math.Hypot(st.Player.X-600, st.Player.Y-300)
	if math.Abs(dist-r.cfg.ChainOffset) > 1e-6 {
		t.Fatalf("player landed %.2f from the follow-up target, want %.0f", dist, r.cfg.ChainOffset)
	}
}

func TestExecutionChainAtMostOncePerTick(t *testing.T) {
	r := testCombatResolver()
	st := &GameState{Tick: 1, Player: PlayerState{X: 400, Y: 300, FacingX: 1}}
	// Two execute-range enemies inside the same swing.
	st.Enemies = []Enemy{
		{ID: 1, Health: 1, MaxHealth: 100, X: 430, Y: 300, Radius: 10},
		{ID: 2, Health: 1, MaxHealth: 100, X: 435, Y: 305, Radius: 10},
	}
	var ev tickEvents

	driveSwing(r, st, &ev, 5) // both executes land on the same active tick

	if chains := combatEventsOfKind(ev.combats, CombatExecutionChain); len(chains) > 1 {
		t.Fatalf("execution chains stacked within one tick: %d", len(chains))
	}
}

func TestFeedbackTiers(t *testing.T) {
	cases := []struct {
		kills int
		want  FeedbackTier
	}{
		{0, TierNone},
		{1, TierSingle},
		{2, TierMulti},
		{3, TierMulti},
		{4, TierMassacre},
		{9, TierMassacre},
	}
	for _, tc := range cases {
		if got := feedbackTierFor(tc.kills); got != tc.want {
			t.Fatalf("feedbackTierFor(%d) = %d, want %d", tc.kills, got, tc.want)
		}
	}
}

func TestMeleeFeedbackEmittedOnceAfterSwing(t *testing.T) {
	r := testCombatResolver()
	st := &GameState{Tick: 1, Player: PlayerState{X: 400, Y: 300, FacingX: 1}}
	st.Enemies = []Enemy{
		{ID: 1, Health: 10, MaxHealth: 100, X: 430, Y: 300, Radius: 10},
		{ID: 2, Health: 10, MaxHealth: 100, X: 440, Y: 310, Radius: 10},
	}
	var ev tickEvents

	driveSwing(r, st, &ev, 12)

	feedback := combatEventsOfKind(ev.combats, CombatFeedback)
	if len(feedback) != 1 {
		t.Fatalf("expected one feedback event, got %d", len(feedback))
	}
	if feedback[0].Tier != TierMulti || feedback[0].Kills != 2 {
		t.Fatalf("feedback = %+v, want multi tier with 2 kills", feedback[0])
	}
}
