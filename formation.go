package main

import (
	"context"
	"math"

	"apex-arena/sim/logging"
	logformation "apex-arena/sim/logging/formation"
	"apex-arena/sim/tuning"
)

type formationPhase uint8

const (
	formationPhaseForming formationPhase = iota
	formationPhaseActive
	formationPhaseResolved
)

type lungePhase uint8

const (
	lungeNone lungePhase = iota
	lungeWindup
	lungeDash
	lungeReturn
)

// formationMember tracks one enemy's slot assignment inside an instance.
type formationMember struct {
	enemyID   uint64
	slotAngle float64
}

// formationInstance is one encircling ring around the player. The ring
// rotates with the player and periodically releases a member into a lunge.
type formationInstance struct {
	id      uint64
	phase   formationPhase
	members []formationMember

	formTimer   float64
	lungeTimer  float64
	escapeTimer float64

	lunge       lungePhase
	lungeMember int
	lungeStart  vec2
	lungeTimerP float64
	lungeHit    bool
}

// formationManager owns every instance plus the per-enemy rejoin cooldowns
// that outlive instances. At most MaxInstances rings exist at once.
type formationManager struct {
	cfg tuning.FormationConfig
	pub logging.Publisher

	instances       []*formationInstance
	startCooldown   float64
	memberCooldowns map[uint64]float64
	nextInstanceID  uint64
}

func newFormationManager(cfg tuning.FormationConfig, pub logging.Publisher) *formationManager {
	return &formationManager{
		cfg:             cfg,
		pub:             pub,
		memberCooldowns: make(map[uint64]float64),
		startCooldown:   cfg.StartCooldownSeconds,
		nextInstanceID:  1,
	}
}

// isMember reports whether the enemy currently belongs to any instance; the
// steering stage skips members, the formation moves them itself.
func (m *formationManager) isMember(id uint64) bool {
	for _, inst := range m.instances {
		for _, mem := range inst.members {
			if mem.enemyID == id {
				return true
			}
		}
	}
	return false
}

// formingSlotTargets returns the world-space slot positions of forming
// instances; the colony stage deposits coordination signal there.
func (m *formationManager) formingSlotTargets(st *GameState) []vec2 {
	var targets []vec2
	for _, inst := range m.instances {
		if inst.phase != formationPhaseForming {
			continue
		}
		for _, mem := range inst.members {
			targets = append(targets, m.slotPosition(st, mem))
		}
	}
	return targets
}

// update advances cooldowns and every instance one tick. Knockback from
// connecting lunges is appended to sources; the caller merges them once per
// tick. The return value is the total lunge damage connecting this tick,
// applied by the caller through its single damage entry point.
func (m *formationManager) update(st *GameState, dt float64, sources *[]knockbackSource, events *tickEvents) float64 {
	lungeDamage := 0.0
	for id, cd := range m.memberCooldowns {
		cd -= dt
		if cd <= 0 {
			delete(m.memberCooldowns, id)
		} else {
			m.memberCooldowns[id] = cd
		}
	}

	if m.startCooldown > 0 {
		m.startCooldown -= dt
	} else if len(m.instances) < m.cfg.MaxInstances {
		m.tryForm(st, events)
	}

	kept := m.instances[:0]
	for _, inst := range m.instances {
		lungeDamage += m.updateInstance(st, inst, dt, sources, events)
		if inst.phase != formationPhaseResolved {
			kept = append(kept, inst)
		}
	}
	m.instances = kept
	return lungeDamage
}

// tryForm recruits nearby eligible enemies into a new ring. Too few recruits
// means no instance and no cooldown consumed.
func (m *formationManager) tryForm(st *GameState, events *tickEvents) {
	var recruits []uint64
	for i := range st.Enemies {
		e := &st.Enemies[i]
		if e.Health <= 0 {
			continue
		}
		if _, cooling := m.memberCooldowns[e.ID]; cooling {
			continue
		}
		if m.isMember(e.ID) {
			continue
		}
		dist := math.Hypot(e.X-st.Player.X, e.Y-st.Player.Y)
		if dist > m.cfg.RecruitRadius {
			continue
		}
		recruits = append(recruits, e.ID)
		if len(recruits) == m.cfg.MaxMembers {
			break
		}
	}
	if len(recruits) < m.cfg.MinMembers {
		return
	}

	inst := &formationInstance{
		id:        m.nextInstanceID,
		phase:     formationPhaseForming,
		formTimer: m.cfg.FormSeconds,
	}
	m.nextInstanceID++
	slotStep := 2 * math.Pi / float64(len(recruits))
	for i, id := range recruits {
		inst.members = append(inst.members, formationMember{enemyID: id, slotAngle: float64(i) * slotStep})
	}
	m.instances = append(m.instances, inst)
	m.startCooldown = m.cfg.StartCooldownSeconds

	events.formations = append(events.formations, FormationEvent{
		Kind:       FormationForming,
		InstanceID: inst.id,
		Members:    len(inst.members),
	})
	logformation.Forming(context.Background(), m.pub, st.Tick, formationRef(inst.id), logformation.FormingPayload{
		InstanceID: inst.id,
		Members:    recruits,
	})
}

func (m *formationManager) updateInstance(st *GameState, inst *formationInstance, dt float64, sources *[]knockbackSource, events *tickEvents) float64 {
	m.pruneDeadMembers(st, inst)
	if len(inst.members) < m.cfg.MinMembers {
		m.resolve(st, inst, "attrition", events)
		return 0
	}

	lungeDamage := 0.0
	switch inst.phase {
	case formationPhaseForming:
		m.moveMembersToSlots(st, inst, dt)
		inst.formTimer -= dt
		if inst.formTimer <= 0 {
			inst.phase = formationPhaseActive
			inst.lungeTimer = m.cfg.LungeIntervalSeconds
			events.formations = append(events.formations, FormationEvent{
				Kind:       FormationActive,
				InstanceID: inst.id,
				Members:    len(inst.members),
			})
			logformation.Active(context.Background(), m.pub, st.Tick, formationRef(inst.id), logformation.ActivePayload{
				InstanceID: inst.id,
				Radius:     m.cfg.RingRadius,
				Members:    len(inst.members),
			})
		}

	case formationPhaseActive:
		m.moveMembersToSlots(st, inst, dt)
		lungeDamage = m.updateLunge(st, inst, dt, sources, events)
		if m.playerEscaped(st, inst, dt) {
			m.resolve(st, inst, "escape", events)
		}
	}
	return lungeDamage
}

func (m *formationManager) pruneDeadMembers(st *GameState, inst *formationInstance) {
	kept := inst.members[:0]
	for i, mem := range inst.members {
		idx := st.enemyIndex(mem.enemyID)
		if idx < 0 || st.Enemies[idx].Health <= 0 {
			if inst.lunge != lungeNone && inst.lungeMember == i {
				inst.lunge = lungeNone
			}
			continue
		}
		if inst.lunge != lungeNone && inst.lungeMember == i {
			inst.lungeMember = len(kept)
		}
		kept = append(kept, mem)
	}
	inst.members = kept
}

func (m *formationManager) slotPosition(st *GameState, mem formationMember) vec2 {
	return vec2{
		X: st.Player.X + math.Cos(mem.slotAngle)*m.cfg.RingRadius,
		Y: st.Player.Y + math.Sin(mem.slotAngle)*m.cfg.RingRadius,
	}
}

// moveMembersToSlots converges each member on its ring slot. The lunging
// member is animated by the lunge sub-machine instead.
func (m *formationManager) moveMembersToSlots(st *GameState, inst *formationInstance, dt float64) {
	for i, mem := range inst.members {
		if inst.lunge != lungeNone && inst.lungeMember == i {
			continue
		}
		idx := st.enemyIndex(mem.enemyID)
		if idx < 0 {
			continue
		}
		e := &st.Enemies[idx]
		target := m.slotPosition(st, mem)
		offset := target.sub(vec2{X: e.X, Y: e.Y})
		dist := offset.length()
		if dist < 1e-6 {
			continue
		}
		step := e.MoveSpeed * dt
		if step >= dist {
			e.X, e.Y = target.X, target.Y
			e.VelX, e.VelY = 0, 0
			continue
		}
		dir := offset.normalized()
		e.X += dir.X * step
		e.Y += dir.Y * step
		e.VelX = dir.X * e.MoveSpeed
		e.VelY = dir.Y * e.MoveSpeed
	}
}

// updateLunge drives the windup/dash/return sub-machine. One member lunges at
// a time per instance; the hit test runs once, at the dash apex.
func (m *formationManager) updateLunge(st *GameState, inst *formationInstance, dt float64, sources *[]knockbackSource, events *tickEvents) float64 {
	if inst.lunge == lungeNone {
		inst.lungeTimer -= dt
		if inst.lungeTimer > 0 {
			return 0
		}
		inst.lungeTimer = m.cfg.LungeIntervalSeconds
		inst.lungeMember = int(st.Tick) % len(inst.members)
		idx := st.enemyIndex(inst.members[inst.lungeMember].enemyID)
		if idx < 0 {
			return 0
		}
		inst.lunge = lungeWindup
		inst.lungeTimerP = 0
		inst.lungeHit = false
		inst.lungeStart = vec2{X: st.Enemies[idx].X, Y: st.Enemies[idx].Y}
		return 0
	}

	idx := st.enemyIndex(inst.members[inst.lungeMember].enemyID)
	if idx < 0 {
		inst.lunge = lungeNone
		return 0
	}
	e := &st.Enemies[idx]
	inst.lungeTimerP += dt

	toPlayer := vec2{X: st.Player.X - inst.lungeStart.X, Y: st.Player.Y - inst.lungeStart.Y}
	dir := toPlayer.normalized()
	if dir == (vec2{}) {
		dir = vec2{X: 1, Y: 0}
	}

	lungeDamage := 0.0
	switch inst.lunge {
	case lungeWindup:
		// Pull back from the slot to telegraph the dash.
		t := clamp(inst.lungeTimerP/m.cfg.LungeWindupSeconds, 0, 1)
		pullback := inst.lungeStart.sub(dir.scale(e.Radius * 2 * t))
		e.X, e.Y = pullback.X, pullback.Y
		if inst.lungeTimerP >= m.cfg.LungeWindupSeconds {
			inst.lunge = lungeDash
			inst.lungeTimerP = 0
		}

	case lungeDash:
		t := easeInQuad(inst.lungeTimerP / m.cfg.LungeDashSeconds)
		pos := inst.lungeStart.add(toPlayer.scale(t))
		e.X, e.Y = pos.X, pos.Y
		if !inst.lungeHit {
			dist := math.Hypot(e.X-st.Player.X, e.Y-st.Player.Y)
			if dist <= m.cfg.LungeHitRadius {
				inst.lungeHit = true
				lungeDamage = m.cfg.LungeDamage
				*sources = append(*sources, knockbackSource{dir: dir, force: m.cfg.LungeKnockbackForce})
			}
		}
		if inst.lungeTimerP >= m.cfg.LungeDashSeconds {
			inst.lunge = lungeReturn
			inst.lungeTimerP = 0
			events.formations = append(events.formations, FormationEvent{
				Kind:       FormationLunge,
				InstanceID: inst.id,
				EnemyID:    e.ID,
				Hit:        inst.lungeHit,
			})
			logformation.Lunge(context.Background(), m.pub, st.Tick, formationRef(inst.id), logformation.LungePayload{
				InstanceID: inst.id,
				EnemyID:    e.ID,
				Hit:        inst.lungeHit,
				Force:      m.cfg.LungeKnockbackForce,
			})
		}

	case lungeReturn:
		t := easeOutQuad(inst.lungeTimerP / m.cfg.LungeReturnSeconds)
		target := m.slotPosition(st, inst.members[inst.lungeMember])
		apex := inst.lungeStart.add(toPlayer)
		pos := apex.add(target.sub(apex).scale(t))
		e.X, e.Y = pos.X, pos.Y
		if inst.lungeTimerP >= m.cfg.LungeReturnSeconds {
			inst.lunge = lungeNone
		}
	}
	return lungeDamage
}

// playerEscaped tracks sustained distance from the ring center. Crossing the
// escape radius for the configured duration resolves the instance.
func (m *formationManager) playerEscaped(st *GameState, inst *formationInstance, dt float64) bool {
	center := m.instanceCenter(st, inst)
	dist := math.Hypot(st.Player.X-center.X, st.Player.Y-center.Y)
	if dist > m.cfg.RingRadius*m.cfg.EscapeRadiusFactor {
		inst.escapeTimer += dt
	} else {
		inst.escapeTimer = 0
	}
	return inst.escapeTimer >= m.cfg.EscapeSeconds
}

func (m *formationManager) instanceCenter(st *GameState, inst *formationInstance) vec2 {
	var sum vec2
	count := 0
	for _, mem := range inst.members {
		idx := st.enemyIndex(mem.enemyID)
		if idx < 0 {
			continue
		}
		sum = sum.add(vec2{X: st.Enemies[idx].X, Y: st.Enemies[idx].Y})
		count++
	}
	if count == 0 {
		return st.playerPos()
	}
	return sum.scale(1 / float64(count))
}

// resolve releases every member with a rejoin cooldown and marks the instance
// for removal.
func (m *formationManager) resolve(st *GameState, inst *formationInstance, reason string, events *tickEvents) {
	for _, mem := range inst.members {
		m.memberCooldowns[mem.enemyID] = m.cfg.RejoinCooldownSeconds
	}
	released := len(inst.members)
	inst.members = nil
	inst.phase = formationPhaseResolved
	inst.lunge = lungeNone

	events.formations = append(events.formations, FormationEvent{
		Kind:       FormationResolved,
		InstanceID: inst.id,
		Members:    released,
		Reason:     reason,
	})
	logformation.Resolved(context.Background(), m.pub, st.Tick, formationRef(inst.id), logformation.ResolvedPayload{
		InstanceID: inst.id,
		Reason:     reason,
		Released:   released,
	})
}
