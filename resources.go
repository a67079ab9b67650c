package main

import (
	"math"

	"apex-arena/sim/logging"
	"apex-arena/sim/tuning"
)

// resourceMeters owns the two risk-reward gauges: heat, built by sustained
// movement and vented as a damage pulse, and graze, stacked by near misses.
// Taking any damage zeroes both.
type resourceMeters struct {
	heatCfg  tuning.HeatConfig
	grazeCfg tuning.GrazeConfig
	pub      logging.Publisher

	heat       float64
	venting    bool
	ventTimer  float64
	ventMissed bool
	decayStep  float64

	grazeStacks   float64
	grazeCooldown float64
	grazeIdle     float64
}

func newResourceMeters(heat tuning.HeatConfig, graze tuning.GrazeConfig, pub logging.Publisher) *resourceMeters {
	return &resourceMeters{heatCfg: heat, grazeCfg: graze, pub: pub}
}

// damageMultiplier is the outgoing-damage bonus contributed by graze stacks.
func (r *resourceMeters) damageMultiplier() float64 {
	return 1 + r.grazeStacks*r.grazeCfg.DamagePerStack
}

// onPlayerDamaged zeroes both gauges. Chip damage and a massive hit cost the
// same: the whole accumulated position.
func (r *resourceMeters) onPlayerDamaged() {
	r.heat = 0
	r.venting = false
	r.ventTimer = 0
	r.ventMissed = false
	r.grazeStacks = 0
	r.grazeIdle = 0
}

// update advances both gauges and ticks burn stacks on enemies. Returns true
// when a heat pulse fired this tick.
func (r *resourceMeters) update(st *GameState, moveSpeed, playerSpeed float64, grazes int, dt float64) bool {
	pulsed := r.updateHeat(st, moveSpeed, playerSpeed, dt)
	r.updateGraze(grazes, dt)
	r.tickBurns(st, dt)
	return pulsed
}

func (r *resourceMeters) updateHeat(st *GameState, moveSpeed, playerSpeed, dt float64) bool {
	sustained := moveSpeed > 0 && playerSpeed > r.heatCfg.SpeedThreshold*moveSpeed

	switch {
	case r.venting:
		r.ventTimer -= dt
		if !sustained {
			r.pulse(st)
			return true
		}
		if r.ventTimer <= 0 {
			r.venting = false
			r.ventMissed = true
		}

	case r.ventMissed:
		r.heat -= r.heatCfg.RapidDecayPerSecond * dt
		if r.heat <= 0 {
			r.heat = 0
			r.ventMissed = false
		}

	case sustained:
		r.heat += r.heatCfg.BuildPerSecond * dt
		r.decayStep = 0
		if r.heat >= r.heatCfg.Cap {
			r.heat = r.heatCfg.Cap
			r.venting = true
			r.ventTimer = r.heatCfg.VentWindowSeconds
		}

	default:
		// Passive decay runs in whole-second steps so brief stops do not
		// bleed a nearly-full gauge.
		r.decayStep += dt
		for r.decayStep >= 1 {
			r.decayStep -= 1
			r.heat = math.Max(0, r.heat-r.heatCfg.DecayPerSecond)
		}
	}
	return false
}

// pulse vents the full gauge: damage, burn stacks, and an outward shove for
// every enemy inside the pulse radius.
func (r *resourceMeters) pulse(st *GameState) {
	damage := r.heatCfg.PulseDamagePerHeat * r.heat
	for i := range st.Enemies {
		e := &st.Enemies[i]
		if e.Health <= 0 {
			continue
		}
		offset := vec2{X: e.X - st.Player.X, Y: e.Y - st.Player.Y}
		dist := offset.length()
		if dist > r.heatCfg.PulseRadius {
			continue
		}
		e.Health -= damage
		e.Burn = BurnState{Stacks: r.heatCfg.BurnStacks, Remaining: r.heatCfg.BurnDuration}

		dir := offset.normalized()
		if dir == (vec2{}) {
			dir = vec2{X: 1, Y: 0}
		}
		push := (r.heatCfg.PulseRadius - dist) * 0.5
		e.X += dir.X * push
		e.Y += dir.Y * push
	}
	r.heat = 0
	r.venting = false
	r.ventTimer = 0
	r.ventMissed = false
}

func (r *resourceMeters) updateGraze(grazes int, dt float64) {
	if r.grazeCooldown > 0 {
		r.grazeCooldown -= dt
	}
	if grazes > 0 && r.grazeCooldown <= 0 {
		r.grazeStacks = math.Min(r.grazeStacks+1, r.grazeCfg.Cap)
		r.grazeCooldown = r.grazeCfg.EventCooldownSeconds
		r.grazeIdle = 0
		return
	}
	r.grazeIdle += dt
	if r.grazeIdle >= r.grazeCfg.GraceSeconds {
		r.grazeStacks = math.Max(0, r.grazeStacks-r.grazeCfg.DecayPerSecond*dt)
	}
}

func (r *resourceMeters) tickBurns(st *GameState, dt float64) {
	for i := range st.Enemies {
		e := &st.Enemies[i]
		if e.Health <= 0 || e.Burn.Stacks == 0 {
			continue
		}
		e.Health -= r.heatCfg.BurnDamagePerSecond * float64(e.Burn.Stacks) * dt
		e.Burn.Remaining -= dt
		if e.Burn.Remaining <= 0 {
			e.Burn = BurnState{}
		}
	}
}
