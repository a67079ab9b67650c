package main

import (
	"context"
	"math"

	"apex-arena/sim/logging"
	logcolony "apex-arena/sim/logging/colony"
	"apex-arena/sim/tuning"
)

// colonyUpdater runs the colony stage: field decay, coordination deposits at
// forming-formation slots, and steering for every enemy not owned by a
// formation. Steering reads the field; it never mutates it.
type colonyUpdater struct {
	cfg   tuning.SteeringConfig
	phCfg tuning.PheromoneConfig
	arena tuning.ArenaConfig
	pub   logging.Publisher
	field *pheromoneField
}

func newColonyUpdater(cfg tuning.SteeringConfig, phCfg tuning.PheromoneConfig, arena tuning.ArenaConfig, pub logging.Publisher) *colonyUpdater {
	return &colonyUpdater{
		cfg:   cfg,
		phCfg: phCfg,
		arena: arena,
		pub:   pub,
		field: newPheromoneField(arena, phCfg),
	}
}

// recordDeath drops a danger marker where an enemy died. Steering reads it
// back as a region to route around.
func (c *colonyUpdater) recordDeath(tick uint64, x, y float64) {
	c.field.depositAlarm(x, y, c.phCfg.DangerDeposit)
	logcolony.DangerDeposit(context.Background(), c.pub, tick, logcolony.DangerDepositPayload{
		X: x, Y: y, Amount: c.phCfg.DangerDeposit,
	})
}

// update decays the field, deposits coordination signal at forming slots, and
// steers every non-formation enemy toward the player's predicted position.
func (c *colonyUpdater) update(st *GameState, formations *formationManager, dt float64) {
	c.field.decay(dt)

	for _, slot := range formations.formingSlotTargets(st) {
		c.field.depositCoord(slot.X, slot.Y, c.phCfg.CoordDepositPerSec*dt)
	}

	if c.field.alarmSpiked() {
		logcolony.AlarmSpike(context.Background(), c.pub, st.Tick, logcolony.AlarmSpikePayload{Level: c.field.totalAlarm})
	}

	lead := vec2{
		X: st.Player.X + st.Player.VelX*c.cfg.LeadSeconds,
		Y: st.Player.Y + st.Player.VelY*c.cfg.LeadSeconds,
	}

	for i := range st.Enemies {
		e := &st.Enemies[i]
		if e.Health <= 0 || formations.isMember(e.ID) {
			continue
		}
		c.steer(e, lead, dt)
	}

	separateEnemies(st.Enemies, c.arena)
}

func (c *colonyUpdater) steer(e *Enemy, lead vec2, dt float64) {
	seek := lead.sub(vec2{X: e.X, Y: e.Y}).normalized()
	avoid := c.field.alarmGradient(e.X, e.Y).scale(-c.cfg.DangerAvoidWeight)
	pull := c.field.coordGradient(e.X, e.Y).scale(c.cfg.CoordPullWeight)

	dir := seek.add(avoid).add(pull).normalized()
	if dir == (vec2{}) {
		dir = seek
	}

	localAlarm := c.field.sampleAlarm(e.X, e.Y)
	speedUp := math.Min(c.field.totalAlarm*c.cfg.AlarmSpeedScalar, c.cfg.AlarmSpeedCap)
	slowDown := math.Min(localAlarm*c.cfg.DangerSlowScalar, c.cfg.DangerSlowCap)
	speed := e.MoveSpeed * (1 + speedUp) * (1 - slowDown)

	e.VelX = dir.X * speed
	e.VelY = dir.Y * speed
	e.X += e.VelX * dt
	e.Y += e.VelY * dt
	e.AlarmHint = localAlarm
	clampEnemyToArena(e, c.arena)
}
