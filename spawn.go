package main

import (
	"context"
	"math/rand"

	"apex-arena/sim/logging"
	loglifecycle "apex-arena/sim/logging/lifecycle"
	"apex-arena/sim/stats"
	"apex-arena/sim/tuning"
)

// waveSpawner paces enemy entry. Each wave drains a spawn queue on a fixed
// interval; once the queue is empty and the arena is clear the wave pays out
// and an intermission runs before the next one.
type waveSpawner struct {
	wavesCfg   tuning.WaveConfig
	enemiesCfg tuning.EnemyConfig
	arena      tuning.ArenaConfig
	pub        logging.Publisher
	rng        *rand.Rand

	nextID       uint64
	toSpawn      []EnemyType
	spawnTimer   float64
	intermission float64
}

func newWaveSpawner(waves tuning.WaveConfig, enemies tuning.EnemyConfig, arena tuning.ArenaConfig, pub logging.Publisher, rng *rand.Rand) *waveSpawner {
	return &waveSpawner{
		wavesCfg:   waves,
		enemiesCfg: enemies,
		arena:      arena,
		pub:        pub,
		rng:        rng,
		nextID:     1,
	}
}

// update drives the spawn queue and the wave lifecycle. Score for a completed
// wave is written here; the loop checks level thresholds afterwards.
func (s *waveSpawner) update(st *GameState, dt float64, events *tickEvents) {
	if st.Wave == 0 {
		s.beginWave(st, 1)
		return
	}

	if s.intermission > 0 {
		s.intermission -= dt
		if s.intermission <= 0 {
			s.beginWave(st, st.Wave+1)
		}
		return
	}

	if len(s.toSpawn) > 0 {
		s.spawnTimer -= dt
		if s.spawnTimer <= 0 {
			s.spawnOne(st)
			s.spawnTimer = s.wavesCfg.SpawnIntervalSeconds
		}
		return
	}

	if anyLiveEnemies(st) {
		return
	}

	// Queue drained and arena clear: wave complete.
	st.Score += s.wavesCfg.WaveBonus
	events.waveDone = true
	events.wave = st.Wave
	events.waveBonus = s.wavesCfg.WaveBonus
	s.intermission = s.wavesCfg.IntermissionSeconds
	loglifecycle.WaveCompleted(context.Background(), s.pub, st.Tick, loglifecycle.WaveCompletedPayload{
		Wave:  st.Wave,
		Bonus: s.wavesCfg.WaveBonus,
	})
}

func (s *waveSpawner) beginWave(st *GameState, wave int) {
	st.Wave = wave
	count := s.wavesCfg.BaseCount + (wave-1)*s.wavesCfg.GrowthPerWave
	s.toSpawn = s.toSpawn[:0]
	for i := 0; i < count; i++ {
		s.toSpawn = append(s.toSpawn, s.rollType(wave))
	}
	s.spawnTimer = 0
}

func (s *waveSpawner) rollType(wave int) EnemyType {
	roll := s.rng.Float64()
	if wave >= s.wavesCfg.SpitterFromWave && roll < 0.2 {
		return EnemyTypeSpitter
	}
	if wave >= s.wavesCfg.SoldierFromWave && roll < 0.5 {
		return EnemyTypeSoldier
	}
	return EnemyTypeDrone
}

func (s *waveSpawner) spawnOne(st *GameState) {
	typ := s.toSpawn[0]
	s.toSpawn = s.toSpawn[1:]
	st.Enemies = append(st.Enemies, s.buildEnemy(typ))
}

// buildEnemy resolves the archetype's derived stats and overlays the
// non-derived tunables. IDs are unique for the run.
func (s *waveSpawner) buildEnemy(typ EnemyType) Enemy {
	var archetype stats.Archetype
	var cfg tuning.EnemyArchetypeConfig
	switch typ {
	case EnemyTypeSoldier:
		archetype = stats.ArchetypeSoldier
		cfg = s.enemiesCfg.Soldier
	case EnemyTypeSpitter:
		archetype = stats.ArchetypeSpitter
		cfg = s.enemiesCfg.Spitter
	default:
		archetype = stats.ArchetypeDrone
		cfg = s.enemiesCfg.Drone
	}
	derived := stats.DefaultDerived(archetype)

	pos := s.spawnPosition()
	id := s.nextID
	s.nextID++
	return Enemy{
		ID:            id,
		Type:          typ,
		X:             pos.X,
		Y:             pos.Y,
		Radius:        cfg.Radius,
		Health:        derived[stats.DerivedMaxHealth],
		MaxHealth:     derived[stats.DerivedMaxHealth],
		MoveSpeed:     derived[stats.DerivedMoveSpeed],
		ContactDamage: cfg.ContactDamagePer,
		KillScore:     cfg.KillScore,
	}
}

// spawnPosition picks a random point on the ring just outside the walls.
// Enemies walk in from the edge on their first steering tick.
func (s *waveSpawner) spawnPosition() vec2 {
	margin := s.arena.SpawnMargin
	switch s.rng.Intn(4) {
	case 0: // top
		return vec2{X: s.rng.Float64() * s.arena.Width, Y: -margin}
	case 1: // bottom
		return vec2{X: s.rng.Float64() * s.arena.Width, Y: s.arena.Height + margin}
	case 2: // left
		return vec2{X: -margin, Y: s.rng.Float64() * s.arena.Height}
	default: // right
		return vec2{X: s.arena.Width + margin, Y: s.rng.Float64() * s.arena.Height}
	}
}

func anyLiveEnemies(st *GameState) bool {
	for i := range st.Enemies {
		if st.Enemies[i].Health > 0 {
			return true
		}
	}
	return false
}
