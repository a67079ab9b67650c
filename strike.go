package main

import (
	"context"
	"math"

	"apex-arena/sim/logging"
	logstrike "apex-arena/sim/logging/strike"
	"apex-arena/sim/tuning"
)

type strikePhase uint8

const (
	strikeReady strikePhase = iota
	strikeLocking
	strikeStriking
	strikeChaining
	strikeMissRecovery
)

func (p strikePhase) String() string {
	switch p {
	case strikeReady:
		return "ready"
	case strikeLocking:
		return "locking"
	case strikeStriking:
		return "striking"
	case strikeChaining:
		return "chaining"
	case strikeMissRecovery:
		return "missRecovery"
	default:
		return "invalid"
	}
}

// strikeMachine drives the charged predator strike. Exactly one phase is
// active at a time; every transition either consumes an input edge or a timer
// expiry, never both in the same tick.
type strikeMachine struct {
	cfg tuning.StrikeConfig
	pub logging.Publisher

	phase   strikePhase
	charge  float64
	aim     vec2
	dir     vec2
	speed   float64
	planned float64
	timer   float64

	chainWindow float64
	chainBudget int
	chained     bool

	bloodlust      float64
	bloodlustMaxed bool
}

func newStrikeMachine(cfg tuning.StrikeConfig, pub logging.Publisher) *strikeMachine {
	return &strikeMachine{
		cfg:         cfg,
		pub:         pub,
		phase:       strikeReady,
		chainBudget: cfg.ChainBudget,
	}
}

// overridesMovement reports whether the machine owns the player's velocity
// this tick. Input-driven movement is suppressed in every phase but ready.
func (m *strikeMachine) overridesMovement() bool {
	return m.phase != strikeReady
}

// movementVelocity is the velocity the physics stage applies while the
// machine overrides movement. Zero outside the striking phase: locking,
// chaining and recovery root the player.
func (m *strikeMachine) movementVelocity() vec2 {
	if m.phase != strikeStriking {
		return vec2{}
	}
	return m.dir.scale(m.speed)
}

// chainWindowOpen reports whether the clutch window is active; the loop slows
// simulation time while it is.
func (m *strikeMachine) chainWindowOpen() bool {
	return m.phase == strikeChaining
}

// update advances the machine one tick. Damage is written into the enemy
// slice directly; observable transitions are appended to events.
func (m *strikeMachine) update(st *GameState, in InputSnapshot, damageScalar, dt float64, events *tickEvents) {
	m.decayBloodlust(dt)

	switch m.phase {
	case strikeReady:
		if in.StrikePressed {
			m.phase = strikeLocking
			m.charge = 0
			m.chained = false
			m.captureAim(st, in)
			events.strikes = append(events.strikes, StrikeEvent{Kind: StrikeLocked})
			// The release edge can share the snapshot and never recurs;
			// launch at minimum charge instead of waiting in locking.
			if in.StrikeReleased {
				m.launch(st, events)
			}
		}

	case strikeLocking:
		m.charge = math.Min(m.charge+dt, m.cfg.MaxChargeSeconds)
		m.captureAim(st, in)
		if in.StrikeReleased {
			m.launch(st, events)
		}

	case strikeStriking:
		m.timer += dt
		if hit := m.captureTarget(st); hit != nil {
			m.resolveHit(st, hit, damageScalar, events)
		} else if m.timer >= m.cfg.StrikeDuration {
			m.miss(st, events)
		}

	case strikeChaining:
		m.chainWindow -= dt
		if in.StrikePressed && m.chainBudget > 0 {
			m.chainBudget--
			m.phase = strikeLocking
			m.charge = 0
			m.chained = true
			m.captureAim(st, in)
			events.strikes = append(events.strikes, StrikeEvent{Kind: StrikeChained, BudgetLeft: m.chainBudget})
			logstrike.Chained(context.Background(), m.pub, st.Tick, playerRef(), logstrike.ChainedPayload{BudgetLeft: m.chainBudget})
			if in.StrikeReleased {
				m.launch(st, events)
			}
		} else if m.chainWindow <= 0 {
			m.backToReady()
		}

	case strikeMissRecovery:
		m.timer -= dt
		if m.timer <= 0 {
			m.backToReady()
		}
	}
}

func (m *strikeMachine) captureAim(st *GameState, in InputSnapshot) {
	aim := vec2{X: in.AimX - st.Player.X, Y: in.AimY - st.Player.Y}.normalized()
	if aim == (vec2{}) {
		aim = vec2{X: st.Player.FacingX, Y: st.Player.FacingY}.normalized()
	}
	if aim == (vec2{}) {
		aim = vec2{X: 1, Y: 0}
	}
	m.aim = aim
}

func (m *strikeMachine) launch(st *GameState, events *tickEvents) {
	ratio := m.charge / m.cfg.MaxChargeSeconds
	distance := m.cfg.MinDistance + (m.cfg.MaxDistance-m.cfg.MinDistance)*ratio
	if m.chained {
		distance += m.cfg.ChainDistanceBonus
	}
	m.planned = distance
	m.dir = m.aim
	m.speed = distance / m.cfg.StrikeDuration
	m.timer = 0
	m.phase = strikeStriking

	events.strikes = append(events.strikes, StrikeEvent{Kind: StrikeLaunched, Distance: distance})
	logstrike.Launched(context.Background(), m.pub, st.Tick, playerRef(), logstrike.LaunchedPayload{
		HoldMillis: int64(m.charge * 1000),
		Distance:   distance,
		Chained:    m.chained,
	})
}

// captureTarget returns the nearest live enemy within the capture radius, or
// nil when the strike connected with nothing this tick.
func (m *strikeMachine) captureTarget(st *GameState) *Enemy {
	var best *Enemy
	bestDist := m.cfg.CaptureRadius
	for i := range st.Enemies {
		e := &st.Enemies[i]
		if e.Health <= 0 {
			continue
		}
		dist := math.Hypot(e.X-st.Player.X, e.Y-st.Player.Y)
		if dist <= bestDist {
			best = e
			bestDist = dist
		}
	}
	return best
}

func (m *strikeMachine) resolveHit(st *GameState, target *Enemy, damageScalar float64, events *tickEvents) {
	damage := m.cfg.Damage * (1 + m.bloodlust*m.cfg.BloodlustDamageScalar) * damageScalar
	target.Health -= damage

	m.bloodlust = math.Min(m.bloodlust+1, m.cfg.BloodlustCap)
	if m.bloodlust >= m.cfg.BloodlustCap && !m.bloodlustMaxed {
		m.bloodlustMaxed = true
		events.strikes = append(events.strikes, StrikeEvent{Kind: StrikeBloodlustMax, Bloodlust: m.bloodlust})
		logstrike.BloodlustMax(context.Background(), m.pub, st.Tick, playerRef())
	}

	m.phase = strikeChaining
	m.chainWindow = m.cfg.ChainWindowSeconds

	events.strikes = append(events.strikes, StrikeEvent{
		Kind:      StrikeHit,
		EnemyID:   target.ID,
		Damage:    damage,
		Bloodlust: m.bloodlust,
	})
	logstrike.Hit(context.Background(), m.pub, st.Tick, playerRef(), enemyRef(target.ID), logstrike.HitPayload{
		EnemyID:   target.ID,
		Damage:    damage,
		Bloodlust: m.bloodlust,
	})
}

func (m *strikeMachine) miss(st *GameState, events *tickEvents) {
	m.phase = strikeMissRecovery
	m.timer = m.cfg.MissRecoverySeconds
	events.strikes = append(events.strikes, StrikeEvent{Kind: StrikeMissed, Distance: m.planned})
	logstrike.Missed(context.Background(), m.pub, st.Tick, playerRef(), logstrike.MissedPayload{Distance: m.planned})
}

func (m *strikeMachine) backToReady() {
	m.phase = strikeReady
	m.chainBudget = m.cfg.ChainBudget
	m.chained = false
	m.timer = 0
	m.chainWindow = 0
}

func (m *strikeMachine) decayBloodlust(dt float64) {
	if m.phase == strikeStriking {
		return
	}
	m.bloodlust = math.Max(0, m.bloodlust-m.cfg.BloodlustDecayPerSec*dt)
	if m.bloodlust < m.cfg.BloodlustCap {
		m.bloodlustMaxed = false
	}
}
