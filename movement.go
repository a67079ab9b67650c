package main

import (
	"math"

	"apex-arena/sim/tuning"
)

// knockbackSource is one pending displacement contribution collected during a
// tick. Sources never touch the player directly; they are merged into a single
// resultant at the end of the formation stage.
type knockbackSource struct {
	dir   vec2
	force float64
}

// mergeKnockbacks folds every same-tick source into one resultant knockback.
// Forces sum as vectors, the magnitude is capped, and the duration derives
// from the capped force so stacked lunges cannot juggle the player.
func mergeKnockbacks(sources []knockbackSource, cfg tuning.FormationConfig) KnockbackState {
	if len(sources) == 0 {
		return KnockbackState{}
	}
	sum := vec2{}
	for _, s := range sources {
		sum = sum.add(s.dir.normalized().scale(s.force))
	}
	force := math.Min(sum.length(), cfg.KnockbackForceCap)
	if force <= 0 {
		return KnockbackState{}
	}
	dir := sum.normalized()
	duration := force * cfg.KnockbackSecondsPer
	return KnockbackState{
		Active:    true,
		DirX:      dir.X,
		DirY:      dir.Y,
		Force:     force,
		Duration:  duration,
		Remaining: duration,
	}
}

// physicsResult reports what the movement stage observed so later stages can
// act on it without re-deriving geometry.
type physicsResult struct {
	contactDamage float64
	venomDamage   float64
	venomHit      bool
	grazes        int
	playerSpeed   float64
}

// advancePhysics moves the player by the resolved velocity plus any active
// knockback, clamps to the arena, and scans enemies for contact and near-miss
// overlap. Damage amounts are returned, not applied; the loop owns the single
// damage entry point.
func advancePhysics(st *GameState, vel vec2, dt float64, cfg *tuning.Config) physicsResult {
	var res physicsResult

	kbVel := vec2{}
	if st.Player.Knockback.Active {
		kb := &st.Player.Knockback
		kbVel = vec2{X: kb.DirX, Y: kb.DirY}.scale(kb.Force)
		kb.Remaining -= dt
		if kb.Remaining <= 0 {
			*kb = KnockbackState{}
		}
	}

	total := vel.add(kbVel)
	st.Player.X += total.X * dt
	st.Player.Y += total.Y * dt
	st.Player.VelX = total.X
	st.Player.VelY = total.Y
	res.playerSpeed = total.length()

	clampPlayerToArena(&st.Player, cfg.Arena)

	moving := vel.length() > 1e-6
	contactRange := cfg.Arena.PlayerRadius
	for i := range st.Enemies {
		e := &st.Enemies[i]
		if e.Health <= 0 {
			continue
		}
		dist := math.Hypot(e.X-st.Player.X, e.Y-st.Player.Y)
		touch := contactRange + e.Radius
		switch {
		case dist <= touch:
			res.contactDamage += e.ContactDamage * dt
			if e.Type == EnemyTypeSpitter {
				res.venomHit = true
			}
		case moving && dist <= touch+cfg.Graze.Band:
			res.grazes++
		}
	}

	if res.venomHit {
		st.Player.Venom = VenomState{
			PerSecond: cfg.Enemies.Spitter.VenomPerSecond,
			Remaining: cfg.Enemies.Spitter.VenomDuration,
		}
	}
	if st.Player.Venom.Remaining > 0 {
		res.venomDamage = st.Player.Venom.PerSecond * dt
		st.Player.Venom.Remaining -= dt
		if st.Player.Venom.Remaining <= 0 {
			st.Player.Venom = VenomState{}
		}
	}

	return res
}

func clampPlayerToArena(p *PlayerState, arena tuning.ArenaConfig) {
	p.X = clamp(p.X, arena.PlayerRadius, arena.Width-arena.PlayerRadius)
	p.Y = clamp(p.Y, arena.PlayerRadius, arena.Height-arena.PlayerRadius)
}

func clampEnemyToArena(e *Enemy, arena tuning.ArenaConfig) {
	e.X = clamp(e.X, e.Radius, arena.Width-e.Radius)
	e.Y = clamp(e.Y, e.Radius, arena.Height-e.Radius)
}

// separateEnemies pushes overlapping enemies apart so the swarm holds shape
// instead of collapsing onto one point. A single relaxation pass per tick is
// enough; residual overlap resolves over subsequent ticks.
func separateEnemies(enemies []Enemy, arena tuning.ArenaConfig) {
	for i := range enemies {
		if enemies[i].Health <= 0 {
			continue
		}
		for j := i + 1; j < len(enemies); j++ {
			if enemies[j].Health <= 0 {
				continue
			}
			a := &enemies[i]
			b := &enemies[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Hypot(dx, dy)
			minDist := a.Radius + b.Radius
			if dist >= minDist {
				continue
			}
			var nx, ny float64
			if dist > 1e-9 {
				nx = dx / dist
				ny = dy / dist
			} else {
				// Coincident centers: deterministic split along x.
				nx, ny = 1, 0
			}
			push := (minDist - dist) / 2
			a.X -= nx * push
			a.Y -= ny * push
			b.X += nx * push
			b.Y += ny * push
		}
	}
	for i := range enemies {
		clampEnemyToArena(&enemies[i], arena)
	}
}
