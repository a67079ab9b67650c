package main

import (
	"context"
	"math"
	"sync"
	"time"

	"apex-arena/sim/logging"
	loglifecycle "apex-arena/sim/logging/lifecycle"
	"apex-arena/sim/stats"
	"apex-arena/sim/tuning"
)

// Radius around the player counted as immediate threat when classifying a
// death as overwhelmed.
const nearbyThreatRadius = 160.0

// Loop is the simulation clock. It owns the game state, every subsystem, and
// the fixed stage order of the update pipeline. All public methods are safe
// for concurrent use.
type Loop struct {
	mu        sync.Mutex
	cfg       tuning.Config
	pub       logging.Publisher
	callbacks Callbacks
	telemetry *telemetryCounters

	state       GameState
	input       *inputTracker
	playerStats stats.Component
	strike      *strikeMachine
	combat      *combatResolver
	combos      *comboEngine
	resources   *resourceMeters
	formations  *formationManager
	colony      *colonyUpdater
	spawner     *waveSpawner
	upgrades    *upgradeGenerator
	governor    *perfGovernor
	audit       *deathAuditor
	events      tickEvents

	pendingOffer    *UpgradeOffer
	gameOverLatched bool
	paused          bool

	running bool
	stop    chan struct{}
}

// NewLoop builds a loop from a normalized config. The publisher may be nil;
// callbacks fields may be nil individually.
func NewLoop(cfg tuning.Config, pub logging.Publisher, cb Callbacks, telemetry *telemetryCounters) *Loop {
	cfg = cfg.Normalized()
	if pub == nil {
		pub = logging.NopPublisher()
	}
	if telemetry == nil {
		telemetry = newTelemetryCounters()
	}
	l := &Loop{
		cfg:       cfg,
		pub:       pub,
		callbacks: cb,
		telemetry: telemetry,
		input:     newInputTracker(),
	}
	l.initRun()
	return l
}

// initRun builds a fresh run: subsystems, player state, and seeded RNG
// streams. Callers hold the mutex (or are the constructor).
func (l *Loop) initRun() {
	cfg := l.cfg

	l.playerStats = stats.DefaultComponent(stats.ArchetypePlayer)
	maxHealth := l.playerStats.GetDerived(stats.DerivedMaxHealth)

	l.state = GameState{
		Status: StatusPlaying,
		Player: PlayerState{
			X:         cfg.Arena.Width / 2,
			Y:         cfg.Arena.Height / 2,
			FacingX:   1,
			Health:    maxHealth,
			MaxHealth: maxHealth,
			MoveSpeed: l.playerStats.GetDerived(stats.DerivedMoveSpeed),
		},
	}

	l.strike = newStrikeMachine(cfg.Strike, l.pub)
	l.combat = newCombatResolver(cfg.Melee, cfg.Arena, l.pub)
	l.combos = newComboEngine()
	l.resources = newResourceMeters(cfg.Heat, cfg.Graze, l.pub)
	l.formations = newFormationManager(cfg.Formation, l.pub)
	l.colony = newColonyUpdater(cfg.Steering, cfg.Pheromone, cfg.Arena, l.pub)
	l.spawner = newWaveSpawner(cfg.Waves, cfg.Enemies, cfg.Arena, l.pub, newDeterministicRNG(cfg.Seed, "waves"))
	l.upgrades = newUpgradeGenerator(cfg.Upgrades, newDeterministicRNG(cfg.Seed, "upgrades"))
	l.governor = newPerfGovernor(cfg.Budgets, l.pub)
	l.audit = newDeathAuditor()
	l.events.reset()

	l.pendingOffer = nil
	l.gameOverLatched = false
	l.paused = false

	// The player starts with its two innate abilities.
	l.combos.acquire("mandible-strike", &l.playerStats)
	l.combos.acquire("apex-strike", &l.playerStats)
	l.playerStats.Resolve(0)

	l.telemetry.RecordRunStarted()
	loglifecycle.RunStarted(context.Background(), l.pub, 0, loglifecycle.RunStartedPayload{Seed: cfg.Seed})
}

// State returns a snapshot of the current game state.
func (l *Loop) State() GameState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Loop) snapshotLocked() GameState {
	st := l.state
	st.Enemies = st.cloneEnemies()
	return st
}

// Input exposes the tracker the host writes into between ticks.
func (l *Loop) Input() *inputTracker {
	return l.input
}

// PendingOffer returns the open upgrade offer, if any.
func (l *Loop) PendingOffer() *UpgradeOffer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pendingOffer == nil {
		return nil
	}
	offer := *l.pendingOffer
	return &offer
}

// Tick advances the simulation by one frame. rawDeltaMs is wall-clock time
// since the previous tick; it is clamped before use. The returned snapshot is
// safe to retain.
func (l *Loop) Tick(rawDeltaMs float64) GameState {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused || l.state.Status != StatusPlaying {
		return l.snapshotLocked()
	}

	deltaMs := clamp(rawDeltaMs, 0, l.cfg.Clock.MaxFrameDeltaMs)
	dt := deltaMs / 1000
	if l.strike.chainWindowOpen() {
		dt *= l.cfg.Clock.ChainClutchScale
	}
	if dt <= 0 {
		return l.snapshotLocked()
	}

	st := &l.state
	st.Tick++
	st.Elapsed += dt
	st.Enemies = st.cloneEnemies()
	l.governor.beginTick(st.Tick)

	// Input.
	l.governor.beginStage(stageInput)
	snap := l.input.sample()
	l.updateFacing(snap)
	l.playerStats.Resolve(st.Tick)
	damageScalar := l.playerStats.GetDerived(stats.DerivedDamageScalar) * l.resources.damageMultiplier()
	st.Player.MoveSpeed = l.playerStats.GetDerived(stats.DerivedMoveSpeed)
	l.governor.endStage(st.Tick)

	// Strike.
	l.governor.beginStage(stageStrike)
	l.strike.update(st, snap, damageScalar, dt, &l.events)
	l.governor.endStage(st.Tick)

	// Physics and collision.
	l.governor.beginStage(stagePhysics)
	vel := vec2{X: snap.MoveX, Y: snap.MoveY}.scale(st.Player.MoveSpeed)
	if l.strike.overridesMovement() {
		vel = l.strike.movementVelocity()
	}
	phys := advancePhysics(st, vel, dt, &l.cfg)
	l.damagePlayer(phys.contactDamage, damageSourceContact)
	l.damagePlayer(phys.venomDamage, damageSourceVenom)
	l.governor.endStage(st.Tick)

	// Melee combat.
	l.governor.beginStage(stageCombat)
	l.combat.update(st, damageScalar, l.playerStats.GetDerived(stats.DerivedCooldownRate), dt, &l.events)
	l.governor.endStage(st.Tick)

	// Formations; knockback sources merge exactly once.
	l.governor.beginStage(stageFormation)
	var sources []knockbackSource
	lungeDamage := l.formations.update(st, dt, &sources, &l.events)
	if kb := mergeKnockbacks(sources, l.cfg.Formation); kb.Active {
		l.applyKnockback(kb)
	}
	l.damagePlayer(lungeDamage, damageSourceLunge)
	l.governor.endStage(st.Tick)

	// Resource gauges. Lunges that whiffed still count as near misses.
	l.governor.beginStage(stageResources)
	nearMisses := phys.grazes
	for _, ev := range l.events.formations {
		if ev.Kind == FormationLunge && !ev.Hit {
			nearMisses++
		}
	}
	l.resources.update(st, st.Player.MoveSpeed, phys.playerSpeed, nearMisses, dt)
	l.governor.endStage(st.Tick)

	// Reap defeated enemies before the colony reads death locations.
	l.reapEnemies()

	// Colony field and steering.
	l.governor.beginStage(stageColony)
	l.colony.update(st, l.formations, dt)
	l.governor.endStage(st.Tick)

	// Waves and level thresholds.
	l.governor.beginStage(stageSpawn)
	l.spawner.update(st, dt, &l.events)
	l.checkLevelUp()
	l.governor.endStage(st.Tick)

	// Audit bookkeeping from this tick's events.
	l.governor.beginStage(stageAudit)
	l.audit.recordGrazes(nearMisses)
	for _, ev := range l.events.strikes {
		switch ev.Kind {
		case StrikeHit:
			l.audit.recordStrike(true)
		case StrikeMissed:
			l.audit.recordStrike(false)
		}
	}
	for _, ev := range l.events.formations {
		l.audit.recordFormation(ev)
	}
	l.governor.endStage(st.Tick)

	perf := l.governor.endTick(st.Tick)
	l.telemetry.RecordTick(time.Duration(perf.TotalMillis*float64(time.Millisecond)), perf.TickOverrun)

	out := l.snapshotLocked()
	l.governor.beginStage(stageCallbacks)
	l.events.flush(l.callbacks, out, perf, true)
	l.governor.endStage(st.Tick)
	l.events.reset()

	return out
}

func (l *Loop) updateFacing(snap InputSnapshot) {
	p := &l.state.Player
	aim := vec2{X: snap.AimX - p.X, Y: snap.AimY - p.Y}.normalized()
	if aim != (vec2{}) {
		p.FacingX, p.FacingY = aim.X, aim.Y
		return
	}
	move := vec2{X: snap.MoveX, Y: snap.MoveY}.normalized()
	if move != (vec2{}) {
		p.FacingX, p.FacingY = move.X, move.Y
	}
}

// applyKnockback scales the merged impulse by the player's resist stat and
// overwrites any residual knockback from earlier ticks.
func (l *Loop) applyKnockback(kb KnockbackState) {
	resist := l.playerStats.GetDerived(stats.DerivedKnockbackResist)
	kb.Force *= 1 - resist
	kb.Duration = kb.Force * l.cfg.Formation.KnockbackSecondsPer
	kb.Remaining = kb.Duration
	if kb.Force <= 0 {
		return
	}
	l.state.Player.Knockback = kb
}

// damagePlayer is the single entry point for incoming damage: it clamps at
// zero, zeroes the resource gauges, feeds the auditor, and latches game over
// exactly once.
func (l *Loop) damagePlayer(amount float64, src damageSource) {
	if amount <= 0 || l.gameOverLatched {
		return
	}
	st := &l.state
	st.Player.Health = math.Max(0, st.Player.Health-amount)
	l.audit.recordDamage(src, amount)
	l.resources.onPlayerDamaged()

	if st.Player.Health > 0 {
		return
	}
	l.gameOverLatched = true
	st.Status = StatusGameOver

	report := l.audit.buildReport(st, l.countNearbyEnemies())
	l.events.gameOver = &report
	l.telemetry.RecordRunEnded()
	loglifecycle.RunEnded(context.Background(), l.pub, st.Tick, loglifecycle.RunEndedPayload{
		Cause:   report.Cause,
		Wave:    report.Wave,
		Score:   report.Score,
		Kills:   report.Kills,
		Elapsed: report.Elapsed,
	})
}

func (l *Loop) countNearbyEnemies() int {
	count := 0
	for i := range l.state.Enemies {
		e := &l.state.Enemies[i]
		if e.Health <= 0 {
			continue
		}
		if math.Hypot(e.X-l.state.Player.X, e.Y-l.state.Player.Y) <= nearbyThreatRadius {
			count++
		}
	}
	return count
}

// reapEnemies removes defeated enemies, pays their rewards exactly once, and
// drops a danger marker where each one fell.
func (l *Loop) reapEnemies() {
	st := &l.state
	kept := st.Enemies[:0]
	for i := range st.Enemies {
		e := st.Enemies[i]
		if e.Health > 0 {
			kept = append(kept, e)
			continue
		}
		st.Score += e.KillScore
		st.Kills++
		l.colony.recordDeath(st.Tick, e.X, e.Y)
	}
	st.Enemies = kept
}

// checkLevelUp pauses the run with an upgrade offer each time the score
// crosses a level threshold.
func (l *Loop) checkLevelUp() {
	st := &l.state
	level := l.upgrades.levelFor(st.Score)
	if level <= st.Level {
		return
	}
	st.Level = level
	offer := l.upgrades.generate(level, l.combos)
	if len(offer.Choices) == 0 {
		return
	}
	st.Status = StatusUpgrade
	l.pendingOffer = &offer
	l.events.levelUp = &offer
	loglifecycle.LevelUp(context.Background(), l.pub, st.Tick, loglifecycle.LevelUpPayload{
		Level:   level,
		Choices: len(offer.Choices),
	})
}

// ApplyUpgrade commits one choice from the pending offer and resumes play.
// Returns false when no offer is open or the id is not in it.
func (l *Loop) ApplyUpgrade(choiceID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.Status != StatusUpgrade || l.pendingOffer == nil {
		return false
	}
	valid := false
	for _, c := range l.pendingOffer.Choices {
		if c.ID == choiceID {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	discovered, ok := l.upgrades.apply(choiceID, l.pendingOffer.Level, &l.playerStats, l.combos)
	if !ok {
		return false
	}
	l.events.combos = append(l.events.combos, discovered...)

	l.playerStats.Resolve(l.state.Tick)
	l.refreshDerivedPlayerState()

	l.pendingOffer = nil
	l.state.Status = StatusPlaying
	return true
}

// refreshDerivedPlayerState pushes recomputed derived stats into the player
// snapshot. A max-health increase heals the difference.
func (l *Loop) refreshDerivedPlayerState() {
	p := &l.state.Player
	newMax := l.playerStats.GetDerived(stats.DerivedMaxHealth)
	if gain := newMax - p.MaxHealth; gain > 0 {
		p.Health = math.Min(newMax, p.Health+gain)
	}
	p.MaxHealth = newMax
	p.Health = math.Min(p.Health, newMax)
	p.MoveSpeed = l.playerStats.GetDerived(stats.DerivedMoveSpeed)
}

// Pause gates Tick without losing state. Edge-flag input arriving while
// paused is consumed on the first tick after Resume.
func (l *Loop) Pause() {
	l.mu.Lock()
	l.paused = true
	l.mu.Unlock()
}

// Resume clears the pause gate.
func (l *Loop) Resume() {
	l.mu.Lock()
	l.paused = false
	l.mu.Unlock()
}

// Reset discards the run and starts a new one from the same config and seed.
func (l *Loop) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.input.reset()
	l.initRun()
}

// Start launches the fixed-rate ticker goroutine. Safe to call once; repeat
// calls while running are no-ops.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stop = make(chan struct{})
	stop := l.stop
	tickRate := l.cfg.Clock.TickRate
	l.mu.Unlock()

	go l.run(stop, tickRate)
}

// run drives the fixed-rate tick loop until the stop channel closes.
func (l *Loop) run(stop <-chan struct{}, tickRate int) {
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			deltaMs := float64(now.Sub(last).Microseconds()) / 1000
			if deltaMs <= 0 {
				deltaMs = 1000 / float64(tickRate)
			}
			last = now
			l.Tick(deltaMs)
		}
	}
}

// Stop halts the ticker goroutine. The loop can be restarted.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	close(l.stop)
	l.running = false
}
