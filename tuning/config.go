// Package tuning carries every gameplay-balance value as a designer-facing
// document. The simulation never hard-codes a balance number; it reads this
// struct, and the schema generator under cmd/schema publishes the matching
// JSON schema for editor tooling.
package tuning

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Config is the root tuning document threaded into the simulation loop.
type Config struct {
	Seed      string          `json:"seed,omitempty" jsonschema:"description=Deterministic run seed; empty selects the default seed"`
	Clock     ClockConfig     `json:"clock"`
	Arena     ArenaConfig     `json:"arena"`
	Strike    StrikeConfig    `json:"strike"`
	Melee     MeleeConfig     `json:"melee"`
	Heat      HeatConfig      `json:"heat"`
	Graze     GrazeConfig     `json:"graze"`
	Formation FormationConfig `json:"formation"`
	Pheromone PheromoneConfig `json:"pheromone"`
	Steering  SteeringConfig  `json:"steering"`
	Waves     WaveConfig      `json:"waves"`
	Enemies   EnemyConfig     `json:"enemies"`
	Upgrades  UpgradeConfig   `json:"upgrades"`
	Budgets   BudgetConfig    `json:"budgets"`
}

// ClockConfig controls the frame pacing of the simulation loop.
type ClockConfig struct {
	TickRate         int     `json:"tickRate" jsonschema:"minimum=1,description=Scheduler ticks per second"`
	MaxFrameDeltaMs  float64 `json:"maxFrameDeltaMs" jsonschema:"description=Raw frame deltas are clamped to this value to avoid spiral-of-death catchup"`
	ChainClutchScale float64 `json:"chainClutchScale" jsonschema:"description=Time scale applied while the strike chain window is open"`
}

// ArenaConfig fixes the play field geometry.
type ArenaConfig struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	PlayerRadius float64 `json:"playerRadius"`
	SpawnMargin  float64 `json:"spawnMargin" jsonschema:"description=Distance outside the walls where wave enemies appear"`
}

// StrikeConfig tunes the predator strike ability.
type StrikeConfig struct {
	MinDistance           float64 `json:"minDistance" jsonschema:"description=Strike travel for a near-zero hold"`
	MaxDistance           float64 `json:"maxDistance"`
	MaxChargeSeconds      float64 `json:"maxChargeSeconds"`
	StrikeDuration        float64 `json:"strikeDuration" jsonschema:"description=Upper bound on the striking phase in seconds"`
	CaptureRadius         float64 `json:"captureRadius"`
	MissRecoverySeconds   float64 `json:"missRecoverySeconds"`
	ChainWindowSeconds    float64 `json:"chainWindowSeconds"`
	ChainBudget           int     `json:"chainBudget" jsonschema:"description=Chain presses available per return to ready"`
	ChainDistanceBonus    float64 `json:"chainDistanceBonus"`
	Damage                float64 `json:"damage"`
	BloodlustCap          float64 `json:"bloodlustCap"`
	BloodlustDecayPerSec  float64 `json:"bloodlustDecayPerSec"`
	BloodlustDamageScalar float64 `json:"bloodlustDamageScalar"`
}

// MeleeConfig tunes the auto-attack resolver.
type MeleeConfig struct {
	Cooldown        float64 `json:"cooldown"`
	WindupSeconds   float64 `json:"windupSeconds"`
	ActiveSeconds   float64 `json:"activeSeconds"`
	RecoverySeconds float64 `json:"recoverySeconds"`
	Range           float64 `json:"range"`
	ArcDegrees      float64 `json:"arcDegrees"`
	Damage          float64 `json:"damage"`
	ExecuteFraction float64 `json:"executeFraction" jsonschema:"description=Health fraction below which a melee kill triggers the execution chain"`
	ChainFraction   float64 `json:"chainFraction" jsonschema:"description=Health fraction qualifying a follow-up target"`
	ChainRadius     float64 `json:"chainRadius"`
	ChainOffset     float64 `json:"chainOffset" jsonschema:"description=Landing distance from the follow-up target"`
}

// HeatConfig tunes the sustained-movement heat gauge.
type HeatConfig struct {
	BuildPerSecond      float64 `json:"buildPerSecond"`
	Cap                 float64 `json:"cap"`
	SpeedThreshold      float64 `json:"speedThreshold" jsonschema:"description=Fraction of move speed counting as sustained movement"`
	VentWindowSeconds   float64 `json:"ventWindowSeconds"`
	PulseRadius         float64 `json:"pulseRadius"`
	PulseDamagePerHeat  float64 `json:"pulseDamagePerHeat"`
	RapidDecayPerSecond float64 `json:"rapidDecayPerSecond"`
	DecayPerSecond      float64 `json:"decayPerSecond"`
	BurnStacks          int     `json:"burnStacks"`
	BurnDamagePerSecond float64 `json:"burnDamagePerSecond"`
	BurnDuration        float64 `json:"burnDuration"`
}

// GrazeConfig tunes the near-miss stack system.
type GrazeConfig struct {
	Band                 float64 `json:"band" jsonschema:"description=Distance beyond contact range that still counts as a near miss"`
	Cap                  float64 `json:"cap"`
	EventCooldownSeconds float64 `json:"eventCooldownSeconds"`
	GraceSeconds         float64 `json:"graceSeconds" jsonschema:"description=Idle time before linear decay begins"`
	DecayPerSecond       float64 `json:"decayPerSecond"`
	DamagePerStack       float64 `json:"damagePerStack" jsonschema:"description=Damage multiplier contributed per stack"`
}

// FormationConfig tunes the swarm formation manager.
type FormationConfig struct {
	MaxInstances          int     `json:"maxInstances"`
	StartCooldownSeconds  float64 `json:"startCooldownSeconds"`
	RecruitRadius         float64 `json:"recruitRadius"`
	MinMembers            int     `json:"minMembers"`
	MaxMembers            int     `json:"maxMembers"`
	FormSeconds           float64 `json:"formSeconds"`
	RingRadius            float64 `json:"ringRadius"`
	LungeIntervalSeconds  float64 `json:"lungeIntervalSeconds"`
	LungeWindupSeconds    float64 `json:"lungeWindupSeconds"`
	LungeDashSeconds      float64 `json:"lungeDashSeconds"`
	LungeReturnSeconds    float64 `json:"lungeReturnSeconds"`
	LungeHitRadius        float64 `json:"lungeHitRadius"`
	LungeDamage           float64 `json:"lungeDamage"`
	LungeKnockbackForce   float64 `json:"lungeKnockbackForce"`
	KnockbackForceCap     float64 `json:"knockbackForceCap" jsonschema:"description=Merged per-tick knockback force is capped here"`
	KnockbackSecondsPer   float64 `json:"knockbackSecondsPerForce"`
	EscapeRadiusFactor    float64 `json:"escapeRadiusFactor"`
	EscapeSeconds         float64 `json:"escapeSeconds"`
	RejoinCooldownSeconds float64 `json:"rejoinCooldownSeconds"`
}

// PheromoneConfig tunes the colony signal field.
type PheromoneConfig struct {
	CellSize             float64 `json:"cellSize"`
	DangerDeposit        float64 `json:"dangerDeposit"`
	CellCap              float64 `json:"cellCap"`
	DangerHalfLife       float64 `json:"dangerHalfLifeSeconds"`
	CoordHalfLife        float64 `json:"coordHalfLifeSeconds"`
	CoordDepositPerSec   float64 `json:"coordDepositPerSecond"`
	AlarmSpikeThreshold  float64 `json:"alarmSpikeThreshold"`
	AlarmSpikeResetRatio float64 `json:"alarmSpikeResetRatio"`
}

// SteeringConfig tunes enemy movement decisions.
type SteeringConfig struct {
	LeadSeconds       float64 `json:"leadSeconds" jsonschema:"description=Linear extrapolation of player velocity when seeking"`
	DangerAvoidWeight float64 `json:"dangerAvoidWeight"`
	CoordPullWeight   float64 `json:"coordPullWeight"`
	AlarmSpeedScalar  float64 `json:"alarmSpeedScalar"`
	AlarmSpeedCap     float64 `json:"alarmSpeedCap"`
	DangerSlowScalar  float64 `json:"dangerSlowScalar"`
	DangerSlowCap     float64 `json:"dangerSlowCap"`
}

// WaveConfig tunes spawn pacing and scoring.
type WaveConfig struct {
	BaseCount            int     `json:"baseCount"`
	GrowthPerWave        int     `json:"growthPerWave"`
	SpawnIntervalSeconds float64 `json:"spawnIntervalSeconds"`
	IntermissionSeconds  float64 `json:"intermissionSeconds"`
	SoldierFromWave      int     `json:"soldierFromWave"`
	SpitterFromWave      int     `json:"spitterFromWave"`
	WaveBonus            int     `json:"waveBonus"`
}

// EnemyArchetypeConfig carries the per-archetype values not derived from stats.
type EnemyArchetypeConfig struct {
	Radius           float64 `json:"radius"`
	ContactDamagePer float64 `json:"contactDamagePerSecond"`
	KillScore        int     `json:"killScore"`
	VenomPerSecond   float64 `json:"venomPerSecond,omitempty"`
	VenomDuration    float64 `json:"venomDuration,omitempty"`
}

// EnemyConfig groups the archetype tunables.
type EnemyConfig struct {
	Drone   EnemyArchetypeConfig `json:"drone"`
	Soldier EnemyArchetypeConfig `json:"soldier"`
	Spitter EnemyArchetypeConfig `json:"spitter"`
}

// UpgradeConfig tunes level pacing and choice generation.
type UpgradeConfig struct {
	ChoiceCount   int `json:"choiceCount"`
	ScorePerLevel int `json:"scorePerLevel"`
}

// BudgetConfig carries advisory per-stage budgets for the performance governor.
type BudgetConfig struct {
	StageMicros map[string]int64 `json:"stageMicros,omitempty" jsonschema:"description=Advisory budget per stage name in microseconds"`
	TickMillis  int64            `json:"tickMillis" jsonschema:"description=Advisory budget for the whole tick in milliseconds"`
}

const defaultSeed = "hatchling"

// Default returns the shipped balance document.
func Default() Config {
	return Config{
		Seed: defaultSeed,
		Clock: ClockConfig{
			TickRate:         30,
			MaxFrameDeltaMs:  50,
			ChainClutchScale: 0.6,
		},
		Arena: ArenaConfig{
			Width:        1600,
			Height:       1200,
			PlayerRadius: 14,
			SpawnMargin:  40,
		},
		Strike: StrikeConfig{
			MinDistance:           90,
			MaxDistance:           340,
			MaxChargeSeconds:      0.9,
			StrikeDuration:        0.28,
			CaptureRadius:         26,
			MissRecoverySeconds:   0.35,
			ChainWindowSeconds:    0.45,
			ChainBudget:           3,
			ChainDistanceBonus:    40,
			Damage:                30,
			BloodlustCap:          8,
			BloodlustDecayPerSec:  0.75,
			BloodlustDamageScalar: 0.12,
		},
		Melee: MeleeConfig{
			Cooldown:        0.8,
			WindupSeconds:   0.12,
			ActiveSeconds:   0.18,
			RecoverySeconds: 0.2,
			Range:           56,
			ArcDegrees:      110,
			Damage:          16,
			ExecuteFraction: 0.2,
			ChainFraction:   0.35,
			ChainRadius:     220,
			ChainOffset:     40,
		},
		Heat: HeatConfig{
			BuildPerSecond:      28,
			Cap:                 100,
			SpeedThreshold:      0.6,
			VentWindowSeconds:   0.6,
			PulseRadius:         140,
			PulseDamagePerHeat:  0.35,
			RapidDecayPerSecond: 60,
			DecayPerSecond:      8,
			BurnStacks:          3,
			BurnDamagePerSecond: 4,
			BurnDuration:        2.5,
		},
		Graze: GrazeConfig{
			Band:                 22,
			Cap:                  10,
			EventCooldownSeconds: 0.2,
			GraceSeconds:         1.0,
			DecayPerSecond:       1,
			DamagePerStack:       0.02,
		},
		Formation: FormationConfig{
			MaxInstances:          2,
			StartCooldownSeconds:  6,
			RecruitRadius:         320,
			MinMembers:            4,
			MaxMembers:            8,
			FormSeconds:           1.6,
			RingRadius:            120,
			LungeIntervalSeconds:  2.2,
			LungeWindupSeconds:    0.35,
			LungeDashSeconds:      0.3,
			LungeReturnSeconds:    0.5,
			LungeHitRadius:        20,
			LungeDamage:           10,
			LungeKnockbackForce:   80,
			KnockbackForceCap:     180,
			KnockbackSecondsPer:   0.002,
			EscapeRadiusFactor:    1.8,
			EscapeSeconds:         1.2,
			RejoinCooldownSeconds: 4,
		},
		Pheromone: PheromoneConfig{
			CellSize:             40,
			DangerDeposit:        30,
			CellCap:              100,
			DangerHalfLife:       4,
			CoordHalfLife:        1.2,
			CoordDepositPerSec:   18,
			AlarmSpikeThreshold:  400,
			AlarmSpikeResetRatio: 0.5,
		},
		Steering: SteeringConfig{
			LeadSeconds:       0.35,
			DangerAvoidWeight: 1.4,
			CoordPullWeight:   0.8,
			AlarmSpeedScalar:  0.006,
			AlarmSpeedCap:     0.6,
			DangerSlowScalar:  0.01,
			DangerSlowCap:     0.5,
		},
		Waves: WaveConfig{
			BaseCount:            6,
			GrowthPerWave:        3,
			SpawnIntervalSeconds: 0.4,
			IntermissionSeconds:  2.5,
			SoldierFromWave:      2,
			SpitterFromWave:      4,
			WaveBonus:            50,
		},
		Enemies: EnemyConfig{
			Drone:   EnemyArchetypeConfig{Radius: 10, ContactDamagePer: 6, KillScore: 10},
			Soldier: EnemyArchetypeConfig{Radius: 14, ContactDamagePer: 14, KillScore: 25},
			Spitter: EnemyArchetypeConfig{Radius: 12, ContactDamagePer: 8, KillScore: 20, VenomPerSecond: 3, VenomDuration: 2},
		},
		Upgrades: UpgradeConfig{
			ChoiceCount:   3,
			ScorePerLevel: 250,
		},
		Budgets: BudgetConfig{
			TickMillis: 33,
		},
	}
}

// Normalized returns a copy with defaults applied and out-of-range values clamped.
func (c Config) Normalized() Config {
	def := Default()
	out := c

	out.Seed = strings.TrimSpace(out.Seed)
	if out.Seed == "" {
		out.Seed = defaultSeed
	}
	if out.Clock.TickRate <= 0 {
		out.Clock.TickRate = def.Clock.TickRate
	}
	if out.Clock.MaxFrameDeltaMs <= 0 {
		out.Clock.MaxFrameDeltaMs = def.Clock.MaxFrameDeltaMs
	}
	if out.Clock.ChainClutchScale <= 0 || out.Clock.ChainClutchScale > 1 {
		out.Clock.ChainClutchScale = def.Clock.ChainClutchScale
	}
	if out.Arena.Width <= 0 {
		out.Arena.Width = def.Arena.Width
	}
	if out.Arena.Height <= 0 {
		out.Arena.Height = def.Arena.Height
	}
	if out.Arena.PlayerRadius <= 0 {
		out.Arena.PlayerRadius = def.Arena.PlayerRadius
	}
	if out.Strike.MinDistance <= 0 {
		out.Strike.MinDistance = def.Strike.MinDistance
	}
	if out.Strike.MaxDistance < out.Strike.MinDistance {
		out.Strike.MaxDistance = out.Strike.MinDistance
	}
	if out.Strike.MaxChargeSeconds <= 0 {
		out.Strike.MaxChargeSeconds = def.Strike.MaxChargeSeconds
	}
	if out.Strike.StrikeDuration <= 0 {
		out.Strike.StrikeDuration = def.Strike.StrikeDuration
	}
	if out.Strike.ChainBudget < 0 {
		out.Strike.ChainBudget = 0
	}
	if out.Strike.BloodlustCap <= 0 {
		out.Strike.BloodlustCap = def.Strike.BloodlustCap
	}
	if out.Melee.Cooldown <= 0 {
		out.Melee.Cooldown = def.Melee.Cooldown
	}
	if out.Melee.ExecuteFraction <= 0 || out.Melee.ExecuteFraction >= 1 {
		out.Melee.ExecuteFraction = def.Melee.ExecuteFraction
	}
	if out.Melee.ChainFraction < out.Melee.ExecuteFraction {
		out.Melee.ChainFraction = def.Melee.ChainFraction
	}
	if out.Heat.Cap <= 0 {
		out.Heat.Cap = def.Heat.Cap
	}
	if out.Graze.Cap <= 0 {
		out.Graze.Cap = def.Graze.Cap
	}
	if out.Formation.MaxInstances <= 0 {
		out.Formation.MaxInstances = def.Formation.MaxInstances
	}
	if out.Formation.MinMembers <= 0 {
		out.Formation.MinMembers = def.Formation.MinMembers
	}
	if out.Formation.MaxMembers < out.Formation.MinMembers {
		out.Formation.MaxMembers = out.Formation.MinMembers
	}
	if out.Formation.KnockbackForceCap <= 0 {
		out.Formation.KnockbackForceCap = def.Formation.KnockbackForceCap
	}
	if out.Pheromone.CellSize <= 0 {
		out.Pheromone.CellSize = def.Pheromone.CellSize
	}
	if out.Pheromone.CellCap <= 0 {
		out.Pheromone.CellCap = def.Pheromone.CellCap
	}
	if out.Pheromone.DangerHalfLife <= 0 {
		out.Pheromone.DangerHalfLife = def.Pheromone.DangerHalfLife
	}
	if out.Pheromone.CoordHalfLife <= 0 {
		out.Pheromone.CoordHalfLife = def.Pheromone.CoordHalfLife
	}
	if out.Waves.BaseCount <= 0 {
		out.Waves.BaseCount = def.Waves.BaseCount
	}
	if out.Upgrades.ChoiceCount <= 0 {
		out.Upgrades.ChoiceCount = def.Upgrades.ChoiceCount
	}
	if out.Upgrades.ScorePerLevel <= 0 {
		out.Upgrades.ScorePerLevel = def.Upgrades.ScorePerLevel
	}
	if out.Budgets.TickMillis <= 0 {
		out.Budgets.TickMillis = int64(1000 / out.Clock.TickRate)
	}
	return out
}

// Load reads a tuning document from disk and normalizes it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("tuning: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("tuning: parse %s: %w", path, err)
	}
	return cfg.Normalized(), nil
}
