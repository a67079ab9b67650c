package main

import (
	"math"
	"testing"

	"apex-arena/sim/tuning"
)

func testStrikeMachine() (*strikeMachine, *GameState) {
	m := newStrikeMachine(tuning.Default().Strike, nil)
	st := &GameState{Tick: 1, Player: PlayerState{X: 400, Y: 300, FacingX: 1}}
	return m, st
}

func launchedDistance(t *testing.T, events []StrikeEvent) float64 {
	t.Helper()
	for _, ev := range events {
		if ev.Kind == StrikeLaunched {
			return ev.Distance
		}
	}
	t.Fatalf("no launch event in %v", events)
	return 0
}

func TestStrikeQuickReleaseTravelsMinimumDistance(t *testing.T) {
	m, st := testStrikeMachine()
	var ev tickEvents

	m.update(st, InputSnapshot{StrikePressed: true, StrikeHeld: true, AimX: 500, AimY: 300}, 1, 0.033, &ev)
	if m.phase != strikeLocking {
		t.Fatalf("expected locking after press, got %v", m.phase)
	}

	m.update(st, InputSnapshot{StrikeReleased: true, AimX: 500, AimY: 300}, 1, 0.001, &ev)
	if m.phase != strikeStriking {
		t.Fatalf("expected striking after release, got %v", m.phase)
	}
	distance := launchedDistance(t, ev.strikes)
	if distance < m.cfg.MinDistance || distance > m.cfg.MinDistance+1 {
		t.Fatalf("quick release distance = %.3f, want ~%.0f", distance, m.cfg.MinDistance)
	}
}

func TestStrikeSameTickPressReleaseLaunchesMinimumStrike(t *testing.T) {
	m, st := testStrikeMachine()
	tracker := newInputTracker()
	tracker.SetAim(500, 300)
	tracker.Press()
	tracker.Release()
	snap := tracker.sample()
	var ev tickEvents

	m.update(st, snap, 1, 0.033, &ev)
	if m.phase != strikeStriking {
		t.Fatalf("same-tick press+release should launch, machine stuck in %v", m.phase)
	}
	distance := launchedDistance(t, ev.strikes)
	if math.Abs(distance-m.cfg.MinDistance) > 1e-9 {
		t.Fatalf("same-tick release distance = %.3f, want %.0f", distance, m.cfg.MinDistance)
	}

	// The edge flags were consumed; empty ticks must not re-lock the machine.
	for i := 0; i < 6; i++ { // 0.3s > StrikeDuration with nothing to hit
		m.update(st, InputSnapshot{}, 1, 0.05, &ev)
	}
	if m.phase != strikeMissRecovery {
		t.Fatalf("expected miss recovery after the dash, got %v", m.phase)
	}
}

func TestStrikeChainPressReleaseSameTickLaunches(t *testing.T) {
	m, st := testStrikeMachine()
	st.Enemies = []Enemy{{ID: 7, Health: 100, MaxHealth: 100, X: st.Player.X + 10, Y: st.Player.Y, Radius: 10}}
	var ev tickEvents

	m.update(st, InputSnapshot{StrikePressed: true, StrikeHeld: true, AimX: 500, AimY: 300}, 1, 0.033, &ev)
	m.update(st, InputSnapshot{StrikeReleased: true, AimX: 500, AimY: 300}, 1, 0.01, &ev)
	m.update(st, InputSnapshot{}, 1, 0.01, &ev)
	if m.phase != strikeChaining {
		t.Fatalf("expected chain window, got %v", m.phase)
	}

	ev.reset()
	m.update(st, InputSnapshot{StrikePressed: true, StrikeReleased: true, AimX: 500, AimY: 300}, 1, 0.01, &ev)
	if m.phase != strikeStriking {
		t.Fatalf("chain press+release in one tick should launch, got %v", m.phase)
	}
	distance := launchedDistance(t, ev.strikes)
	want := m.cfg.MinDistance + m.cfg.ChainDistanceBonus
	if math.Abs(distance-want) > 1e-9 {
		t.Fatalf("chained same-tick launch distance = %.3f, want %.0f", distance, want)
	}
}

func TestStrikeChargeCapsAtMaxDistance(t *testing.T) {
	m, st := testStrikeMachine()
	var ev tickEvents

	m.update(st, InputSnapshot{StrikePressed: true, StrikeHeld: true, AimX: 500, AimY: 300}, 1, 0.033, &ev)
	for i := 0; i < 40; i++ { // 2s held, well past the charge cap
		m.update(st, InputSnapshot{StrikeHeld: true, AimX: 500, AimY: 300}, 1, 0.05, &ev)
	}
	m.update(st, InputSnapshot{StrikeReleased: true, AimX: 500, AimY: 300}, 1, 0.01, &ev)

	distance := launchedDistance(t, ev.strikes)
	if math.Abs(distance-m.cfg.MaxDistance) > 1e-9 {
		t.Fatalf("overheld release distance = %.3f, want %.0f", distance, m.cfg.MaxDistance)
	}
}

func TestStrikeMissEntersRecoveryThenReady(t *testing.T) {
	m, st := testStrikeMachine()
	var ev tickEvents

	m.update(st, InputSnapshot{StrikePressed: true, StrikeHeld: true, AimX: 500, AimY: 300}, 1, 0.033, &ev)
	m.update(st, InputSnapshot{StrikeReleased: true, AimX: 500, AimY: 300}, 1, 0.01, &ev)

	for i := 0; i < 6; i++ { // 0.3s > StrikeDuration with no enemies to hit
		m.update(st, InputSnapshot{}, 1, 0.05, &ev)
	}
	if m.phase != strikeMissRecovery {
		t.Fatalf("expected miss recovery, got %v", m.phase)
	}
	missed := false
	for _, e := range ev.strikes {
		if e.Kind == StrikeMissed {
			missed = true
		}
	}
	if !missed {
		t.Fatalf("expected a miss event")
	}

	for i := 0; i < 8; i++ { // 0.4s > MissRecoverySeconds
		m.update(st, InputSnapshot{}, 1, 0.05, &ev)
	}
	if m.phase != strikeReady {
		t.Fatalf("expected ready after recovery, got %v", m.phase)
	}
}

func TestStrikeHitOpensChainWindow(t *testing.T) {
	m, st := testStrikeMachine()
	st.Enemies = []Enemy{{ID: 7, Health: 100, MaxHealth: 100, X: st.Player.X + 10, Y: st.Player.Y, Radius: 10}}
	var ev tickEvents

	m.update(st, InputSnapshot{StrikePressed: true, StrikeHeld: true, AimX: 500, AimY: 300}, 1, 0.033, &ev)
	m.update(st, InputSnapshot{StrikeReleased: true, AimX: 500, AimY: 300}, 1, 0.01, &ev)
	m.update(st, InputSnapshot{}, 1, 0.01, &ev)

	if m.phase != strikeChaining || !m.chainWindowOpen() {
		t.Fatalf("expected chain window after hit, got %v", m.phase)
	}
	if got := st.Enemies[0].Health; math.Abs(got-70) > 1e-9 {
		t.Fatalf("enemy health after base hit = %.3f, want 70", got)
	}
	if m.bloodlust != 1 {
		t.Fatalf("bloodlust after hit = %.1f, want 1", m.bloodlust)
	}
}

func TestStrikeChainConsumesBudgetAndAddsBonus(t *testing.T) {
	m, st := testStrikeMachine()
	st.Enemies = []Enemy{{ID: 7, Health: 100, MaxHealth: 100, X: st.Player.X + 10, Y: st.Player.Y, Radius: 10}}
	var ev tickEvents

	m.update(st, InputSnapshot{StrikePressed: true, StrikeHeld: true, AimX: 500, AimY: 300}, 1, 0.033, &ev)
	m.update(st, InputSnapshot{StrikeReleased: true, AimX: 500, AimY: 300}, 1, 0.01, &ev)
	m.update(st, InputSnapshot{}, 1, 0.01, &ev)

	ev.reset()
	m.update(st, InputSnapshot{StrikePressed: true, StrikeHeld: true, AimX: 500, AimY: 300}, 1, 0.01, &ev)
	if m.phase != strikeLocking || m.chainBudget != m.cfg.ChainBudget-1 {
		t.Fatalf("chain press should relock with budget spent; phase=%v budget=%d", m.phase, m.chainBudget)
	}

	m.update(st, InputSnapshot{StrikeReleased: true, AimX: 500, AimY: 300}, 1, 0.001, &ev)
	distance := launchedDistance(t, ev.strikes)
	if distance < m.cfg.MinDistance+m.cfg.ChainDistanceBonus {
		t.Fatalf("chained launch distance = %.3f, want at least %.0f", distance, m.cfg.MinDistance+m.cfg.ChainDistanceBonus)
	}
}

func TestStrikeChainWindowExpiryRestoresBudget(t *testing.T) {
	m, st := testStrikeMachine()
	st.Enemies = []Enemy{{ID: 7, Health: 100, MaxHealth: 100, X: st.Player.X + 10, Y: st.Player.Y, Radius: 10}}
	var ev tickEvents

	m.update(st, InputSnapshot{StrikePressed: true, StrikeHeld: true, AimX: 500, AimY: 300}, 1, 0.033, &ev)
	m.update(st, InputSnapshot{StrikeReleased: true, AimX: 500, AimY: 300}, 1, 0.01, &ev)
	m.update(st, InputSnapshot{}, 1, 0.01, &ev)

	for i := 0; i < 10; i++ { // 0.5s > ChainWindowSeconds
		m.update(st, InputSnapshot{}, 1, 0.05, &ev)
	}
	if m.phase != strikeReady {
		t.Fatalf("expected ready after window expiry, got %v", m.phase)
	}
	if m.chainBudget != m.cfg.ChainBudget {
		t.Fatalf("chain budget should reset on ready, got %d", m.chainBudget)
	}
}

func TestStrikeSuppressesMovementOutsideReady(t *testing.T) {
	m, st := testStrikeMachine()
	var ev tickEvents

	if m.overridesMovement() {
		t.Fatalf("ready phase must not override movement")
	}
	m.update(st, InputSnapshot{StrikePressed: true, StrikeHeld: true, AimX: 500, AimY: 300}, 1, 0.033, &ev)
	if !m.overridesMovement() || m.movementVelocity() != (vec2{}) {
		t.Fatalf("locking should root the player")
	}
	m.update(st, InputSnapshot{StrikeReleased: true, AimX: 500, AimY: 300}, 1, 0.01, &ev)
	if v := m.movementVelocity(); v.length() == 0 {
		t.Fatalf("striking phase should supply a dash velocity")
	}
}
