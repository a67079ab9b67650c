package main

import (
	"testing"

	"apex-arena/sim/tuning"
)

func testWaveSpawner() *waveSpawner {
	cfg := tuning.Default()
	return newWaveSpawner(cfg.Waves, cfg.Enemies, cfg.Arena, nil, newDeterministicRNG("test", "waves"))
}

func TestFirstWaveQueuesOnlyDrones(t *testing.T) {
	s := testWaveSpawner()
	st := &GameState{}
	var ev tickEvents

	s.update(st, 0.05, &ev)
	if st.Wave != 1 {
		t.Fatalf("wave = %d, want 1", st.Wave)
	}
	if len(s.toSpawn) != s.wavesCfg.BaseCount {
		t.Fatalf("queued %d enemies, want %d", len(s.toSpawn), s.wavesCfg.BaseCount)
	}
	for _, typ := range s.toSpawn {
		if typ != EnemyTypeDrone {
			t.Fatalf("wave 1 queued a %s before its unlock wave", typ)
		}
	}
}

func TestSpawnQueueDrainsOnInterval(t *testing.T) {
	s := testWaveSpawner()
	st := &GameState{}
	var ev tickEvents

	s.update(st, 0.05, &ev) // begin wave 1
	s.update(st, 0.05, &ev) // first spawn is immediate
	if len(st.Enemies) != 1 {
		t.Fatalf("enemies after first spawn tick = %d, want 1", len(st.Enemies))
	}

	// The next spawn waits a full interval.
	s.update(st, s.wavesCfg.SpawnIntervalSeconds-0.01, &ev)
	if len(st.Enemies) != 1 {
		t.Fatalf("spawned early: %d enemies", len(st.Enemies))
	}
	s.update(st, 0.05, &ev)
	if len(st.Enemies) != 2 {
		t.Fatalf("enemies after one interval = %d, want 2", len(st.Enemies))
	}
}

func TestWaveCompletionPaysBonusThenIntermission(t *testing.T) {
	s := testWaveSpawner()
	st := &GameState{}
	var ev tickEvents

	s.update(st, 0.05, &ev)
	for len(s.toSpawn) > 0 {
		s.update(st, s.wavesCfg.SpawnIntervalSeconds, &ev)
	}
	for i := range st.Enemies {
		st.Enemies[i].Health = 0
	}

	s.update(st, 0.05, &ev)
	if !ev.waveDone || ev.wave != 1 || ev.waveBonus != s.wavesCfg.WaveBonus {
		t.Fatalf("wave completion events wrong: done=%v wave=%d bonus=%d", ev.waveDone, ev.wave, ev.waveBonus)
	}
	if st.Score != s.wavesCfg.WaveBonus {
		t.Fatalf("score = %d, want bonus %d", st.Score, s.wavesCfg.WaveBonus)
	}

	// The next wave begins only after the intermission runs out, and grows.
	s.update(st, 0.05, &ev)
	if st.Wave != 1 {
		t.Fatalf("wave advanced during intermission")
	}
	for i := 0; i < 10; i++ {
		s.update(st, 0.3, &ev)
		if st.Wave == 2 {
			break
		}
	}
	if st.Wave != 2 {
		t.Fatalf("intermission never ended")
	}
	want := s.wavesCfg.BaseCount + s.wavesCfg.GrowthPerWave
	if len(s.toSpawn) != want {
		t.Fatalf("wave 2 queued %d enemies, want %d", len(s.toSpawn), want)
	}
	for _, typ := range s.toSpawn {
		if typ == EnemyTypeSpitter {
			t.Fatalf("spitter queued before wave %d", s.wavesCfg.SpitterFromWave)
		}
	}
}

func TestBuildEnemyResolvesArchetypeStats(t *testing.T) {
	s := testWaveSpawner()

	drone := s.buildEnemy(EnemyTypeDrone)
	if drone.Health != 30 || drone.MaxHealth != 30 {
		t.Fatalf("drone health = %.1f, want 30", drone.Health)
	}
	if drone.MoveSpeed != 156 {
		t.Fatalf("drone move speed = %.1f, want 156", drone.MoveSpeed)
	}
	if drone.Radius != 10 || drone.ContactDamage != 6 || drone.KillScore != 10 {
		t.Fatalf("drone tunables wrong: %+v", drone)
	}

	soldier := s.buildEnemy(EnemyTypeSoldier)
	if soldier.Health != 84 {
		t.Fatalf("soldier health = %.1f, want 84", soldier.Health)
	}
	if soldier.ID != drone.ID+1 {
		t.Fatalf("ids must increment: %d then %d", drone.ID, soldier.ID)
	}

	spitter := s.buildEnemy(EnemyTypeSpitter)
	if spitter.Health != 42 {
		t.Fatalf("spitter health = %.1f, want 42", spitter.Health)
	}
}

func TestSpawnPositionSitsOutsideTheWalls(t *testing.T) {
	s := testWaveSpawner()
	for i := 0; i < 50; i++ {
		pos := s.spawnPosition()
		inside := pos.X >= 0 && pos.X <= s.arena.Width && pos.Y >= 0 && pos.Y <= s.arena.Height
		if inside {
			t.Fatalf("spawn %d landed inside the arena: %+v", i, pos)
		}
	}
}
