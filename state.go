package main

// GameStatus reports the lifecycle stage of the current run.
type GameStatus string

const (
	StatusPlaying  GameStatus = "playing"
	StatusUpgrade  GameStatus = "upgrade"
	StatusGameOver GameStatus = "gameover"
)

// EnemyType tags the archetype an enemy was spawned from.
type EnemyType string

const (
	EnemyTypeDrone   EnemyType = "drone"
	EnemyTypeSoldier EnemyType = "soldier"
	EnemyTypeSpitter EnemyType = "spitter"
)

// BurnState tracks damage-over-time stacks applied by the heat pulse.
type BurnState struct {
	Stacks    int     `json:"stacks,omitempty"`
	Remaining float64 `json:"remaining,omitempty"`
}

// Enemy is one member of the swarm. IDs are stable and unique for the run.
type Enemy struct {
	ID            uint64    `json:"id"`
	Type          EnemyType `json:"type"`
	X             float64   `json:"x"`
	Y             float64   `json:"y"`
	VelX          float64   `json:"velX"`
	VelY          float64   `json:"velY"`
	Radius        float64   `json:"radius"`
	Health        float64   `json:"health"`
	MaxHealth     float64   `json:"maxHealth"`
	MoveSpeed     float64   `json:"moveSpeed"`
	ContactDamage float64   `json:"contactDamage"`
	KillScore     int       `json:"killScore"`
	Burn          BurnState `json:"burn,omitempty"`
	AlarmHint     float64   `json:"alarmHint,omitempty"`
}

// KnockbackState is the single resultant displacement applied to the player.
// Multiple same-tick sources are merged before this is ever written.
type KnockbackState struct {
	Active    bool    `json:"active"`
	DirX      float64 `json:"dirX"`
	DirY      float64 `json:"dirY"`
	Force     float64 `json:"force"`
	Duration  float64 `json:"duration"`
	Remaining float64 `json:"remaining"`
}

// VenomState is the damage-over-time applied by spitter contact.
type VenomState struct {
	PerSecond float64 `json:"perSecond,omitempty"`
	Remaining float64 `json:"remaining,omitempty"`
}

// PlayerState is the player's slice of the snapshot.
type PlayerState struct {
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	VelX      float64        `json:"velX"`
	VelY      float64        `json:"velY"`
	FacingX   float64        `json:"facingX"`
	FacingY   float64        `json:"facingY"`
	Health    float64        `json:"health"`
	MaxHealth float64        `json:"maxHealth"`
	MoveSpeed float64        `json:"moveSpeed"`
	Knockback KnockbackState `json:"knockback"`
	Venom     VenomState     `json:"venom"`
}

// GameState is the root snapshot threaded through the tick pipeline. The loop
// clones the enemy slice at the start of every tick; a snapshot handed to
// callbacks is never mutated afterwards.
type GameState struct {
	Tick    uint64     `json:"tick"`
	Elapsed float64    `json:"elapsed"`
	Wave    int        `json:"wave"`
	Score   int        `json:"score"`
	Kills   int        `json:"kills"`
	Level   int        `json:"level"`
	Status  GameStatus  `json:"status"`
	Player  PlayerState `json:"player"`
	Enemies []Enemy     `json:"enemies"`
}

// cloneEnemies returns a fresh slice so the previous tick's snapshot stays
// untouched.
func (st GameState) cloneEnemies() []Enemy {
	if len(st.Enemies) == 0 {
		return nil
	}
	return append([]Enemy(nil), st.Enemies...)
}

// enemyIndex returns the slice index for the given id, or -1.
func (st GameState) enemyIndex(id uint64) int {
	for i := range st.Enemies {
		if st.Enemies[i].ID == id {
			return i
		}
	}
	return -1
}

func (st GameState) playerPos() vec2 {
	return vec2{X: st.Player.X, Y: st.Player.Y}
}
