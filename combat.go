package main

import (
	"context"
	"math"

	"apex-arena/sim/logging"
	logcombat "apex-arena/sim/logging/combat"
	"apex-arena/sim/tuning"
)

type meleePhase uint8

const (
	meleeIdle meleePhase = iota
	meleeWindup
	meleeActive
	meleeRecovery
)

// combatResolver runs the automatic melee swing and the execution chain. The
// swing is a windup/active/recovery cycle gated by a cooldown; every live
// enemy can be struck at most once per swing.
type combatResolver struct {
	cfg   tuning.MeleeConfig
	arena tuning.ArenaConfig
	pub   logging.Publisher

	phase    meleePhase
	timer    float64
	cooldown float64
	swingDir vec2

	alreadyHit     map[uint64]struct{}
	killsThisSwing int
	chainedTick    uint64
}

func newCombatResolver(cfg tuning.MeleeConfig, arena tuning.ArenaConfig, pub logging.Publisher) *combatResolver {
	return &combatResolver{
		cfg:        cfg,
		arena:      arena,
		pub:        pub,
		alreadyHit: make(map[uint64]struct{}),
	}
}

// update advances the melee cycle one tick. cooldownRate and damageScalar come
// from the player's resolved derived stats.
func (r *combatResolver) update(st *GameState, damageScalar, cooldownRate, dt float64, events *tickEvents) {
	if r.cooldown > 0 {
		r.cooldown -= dt
	}

	switch r.phase {
	case meleeIdle:
		if r.cooldown > 0 {
			return
		}
		if len(liveEnemyIndexes(st)) == 0 {
			return
		}
		r.beginSwing(st)

	case meleeWindup:
		r.timer -= dt
		if r.timer <= 0 {
			r.phase = meleeActive
			r.timer = r.cfg.ActiveSeconds
			events.combats = append(events.combats, CombatEvent{Kind: CombatSwing})
		}

	case meleeActive:
		r.resolveSwingHits(st, damageScalar, events)
		if r.phase != meleeActive {
			// An execution chain reset the swing mid-window.
			r.emitFeedback(events)
			return
		}
		r.timer -= dt
		if r.timer <= 0 {
			r.phase = meleeRecovery
			r.timer = r.cfg.RecoverySeconds
			r.emitFeedback(events)
		}

	case meleeRecovery:
		r.timer -= dt
		if r.timer <= 0 {
			r.endSwing(cooldownRate)
		}
	}
}

func (r *combatResolver) beginSwing(st *GameState) {
	r.phase = meleeWindup
	r.timer = r.cfg.WindupSeconds
	r.killsThisSwing = 0
	for id := range r.alreadyHit {
		delete(r.alreadyHit, id)
	}
	// Swing direction locks at windup toward the nearest enemy, in or out of
	// range; a whiffed swing is still a swing.
	if target := nearestLiveEnemy(st); target != nil {
		r.swingDir = vec2{X: target.X - st.Player.X, Y: target.Y - st.Player.Y}.normalized()
	}
	if r.swingDir == (vec2{}) {
		r.swingDir = vec2{X: st.Player.FacingX, Y: st.Player.FacingY}.normalized()
	}
	if r.swingDir == (vec2{}) {
		r.swingDir = vec2{X: 1, Y: 0}
	}
}

func (r *combatResolver) endSwing(cooldownRate float64) {
	r.phase = meleeIdle
	if cooldownRate <= 0 {
		cooldownRate = 1
	}
	r.cooldown = r.cfg.Cooldown / cooldownRate
}

func (r *combatResolver) resolveSwingHits(st *GameState, damageScalar float64, events *tickEvents) {
	halfArc := r.cfg.ArcDegrees * math.Pi / 360
	var hitIDs []uint64
	for i := range st.Enemies {
		e := &st.Enemies[i]
		if e.Health <= 0 {
			continue
		}
		if _, seen := r.alreadyHit[e.ID]; seen {
			continue
		}
		offset := vec2{X: e.X - st.Player.X, Y: e.Y - st.Player.Y}
		dist := offset.length()
		if dist > r.cfg.Range+e.Radius {
			continue
		}
		if dist > 1e-9 {
			angle := math.Acos(clamp((offset.X*r.swingDir.X+offset.Y*r.swingDir.Y)/dist, -1, 1))
			if angle > halfArc {
				continue
			}
		}
		r.alreadyHit[e.ID] = struct{}{}
		hitIDs = append(hitIDs, e.ID)
		r.applyHit(st, e, damageScalar, events)
	}
	if len(hitIDs) > 1 {
		targets := make([]logging.EntityRef, 0, len(hitIDs))
		for _, id := range hitIDs {
			targets = append(targets, enemyRef(id))
		}
		logcombat.SwingOverlap(context.Background(), r.pub, st.Tick, playerRef(), targets, logcombat.SwingOverlapPayload{Hits: hitIDs}, nil)
	}
}

func (r *combatResolver) applyHit(st *GameState, e *Enemy, damageScalar float64, events *tickEvents) {
	preFraction := 0.0
	if e.MaxHealth > 0 {
		preFraction = e.Health / e.MaxHealth
	}
	damage := r.cfg.Damage * damageScalar
	e.Health -= damage

	events.combats = append(events.combats, CombatEvent{Kind: CombatHit, EnemyID: e.ID, Damage: damage})
	logcombat.Damage(context.Background(), r.pub, st.Tick, playerRef(), enemyRef(e.ID), logcombat.DamagePayload{
		Source:       "melee",
		Amount:       damage,
		TargetHealth: math.Max(e.Health, 0),
	}, nil)

	if e.Health > 0 {
		return
	}
	r.killsThisSwing++
	events.combats = append(events.combats, CombatEvent{Kind: CombatKill, EnemyID: e.ID})
	logcombat.Defeat(context.Background(), r.pub, st.Tick, playerRef(), enemyRef(e.ID), logcombat.DefeatPayload{Source: "melee", Wave: st.Wave}, nil)

	if preFraction < r.cfg.ExecuteFraction {
		r.tryExecutionChain(st, e.ID, events)
	}
}

// tryExecutionChain resets the swing and repositions the player next to a
// wounded follow-up target. At most one chain fires per tick; a chain that
// lands into another execute kill waits for the next swing.
func (r *combatResolver) tryExecutionChain(st *GameState, victimID uint64, events *tickEvents) {
	if r.chainedTick == st.Tick {
		return
	}
	r.chainedTick = st.Tick

	next := r.findChainTarget(st)
	payload := logcombat.ExecutionChainPayload{VictimID: victimID}
	if next != nil {
		// Land just short of the target along the approach line.
		approach := vec2{X: st.Player.X - next.X, Y: st.Player.Y - next.Y}.normalized()
		if approach == (vec2{}) {
			approach = vec2{X: 1, Y: 0}
		}
		st.Player.X = next.X + approach.X*r.cfg.ChainOffset
		st.Player.Y = next.Y + approach.Y*r.cfg.ChainOffset
		clampPlayerToArena(&st.Player, r.arena)
		payload.NextID = next.ID
		payload.ToX = st.Player.X
		payload.ToY = st.Player.Y
	}

	r.phase = meleeIdle
	r.cooldown = 0
	r.timer = 0

	events.combats = append(events.combats, CombatEvent{Kind: CombatExecutionChain, EnemyID: victimID})
	logcombat.ExecutionChain(context.Background(), r.pub, st.Tick, playerRef(), payload, nil)
}

func (r *combatResolver) findChainTarget(st *GameState) *Enemy {
	var best *Enemy
	bestDist := r.cfg.ChainRadius
	for i := range st.Enemies {
		e := &st.Enemies[i]
		if e.Health <= 0 || e.MaxHealth <= 0 {
			continue
		}
		if e.Health/e.MaxHealth >= r.cfg.ChainFraction {
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

func (r *combatResolver) emitFeedback(events *tickEvents) {
	tier := feedbackTierFor(r.killsThisSwing)
	if tier == TierNone {
		return
	}
	events.combats = append(events.combats, CombatEvent{Kind: CombatFeedback, Tier: tier, Kills: r.killsThisSwing})
}

func feedbackTierFor(kills int) FeedbackTier {
	switch {
	case kills >= 4:
		return TierMassacre
	case kills >= 2:
		return TierMulti
	case kills == 1:
		return TierSingle
	default:
		return TierNone
	}
}

func nearestLiveEnemy(st *GameState) *Enemy {
	var best *Enemy
	bestDist := math.MaxFloat64
	for i := range st.Enemies {
		e := &st.Enemies[i]
		if e.Health <= 0 {
			continue
		}
		dist := math.Hypot(e.X-st.Player.X, e.Y-st.Player.Y)
		if dist < bestDist {
			best = e
			bestDist = dist
		}
	}
	return best
}

func liveEnemyIndexes(st *GameState) []int {
	idx := make([]int, 0, len(st.Enemies))
	for i := range st.Enemies {
		if st.Enemies[i].Health > 0 {
			idx = append(idx, i)
		}
	}
	return idx
}
