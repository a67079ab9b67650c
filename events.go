package main

// Closed event enums per subsystem. Handlers switch exhaustively on the kind;
// adding a kind without a handler arm is a compile-visible hole rather than a
// silently ignored string.

// StrikeEventKind enumerates predator-strike events.
type StrikeEventKind uint8

const (
	StrikeLocked StrikeEventKind = iota
	StrikeLaunched
	StrikeHit
	StrikeChained
	StrikeMissed
	StrikeBloodlustMax
)

// StrikeEvent is one strike-machine occurrence within a tick.
type StrikeEvent struct {
	Kind       StrikeEventKind
	EnemyID    uint64
	Damage     float64
	Distance   float64
	BudgetLeft int
	Bloodlust  float64
}

// FormationEventKind enumerates swarm-formation events.
type FormationEventKind uint8

const (
	FormationForming FormationEventKind = iota
	FormationActive
	FormationLunge
	FormationResolved
)

// FormationEvent is one formation occurrence within a tick.
type FormationEvent struct {
	Kind       FormationEventKind
	InstanceID uint64
	EnemyID    uint64
	Hit        bool
	Members    int
	Reason     string
}

// FeedbackTier grades multi-kill screen feedback; it never affects damage.
type FeedbackTier uint8

const (
	TierNone FeedbackTier = iota
	TierSingle
	TierMulti
	TierMassacre
)

// CombatEventKind enumerates melee-resolver events.
type CombatEventKind uint8

const (
	CombatSwing CombatEventKind = iota
	CombatHit
	CombatKill
	CombatFeedback
	CombatExecutionChain
)

// CombatEvent is one combat-resolver occurrence within a tick.
type CombatEvent struct {
	Kind    CombatEventKind
	EnemyID uint64
	Damage  float64
	Tier    FeedbackTier
	Kills   int
}

// ComboID identifies a discoverable combo.
type ComboID string

// AbilityID identifies an owned ability; acquisition order feeds combo
// discovery.
type AbilityID string

// UpgradeChoice is one option in a level-up offer.
type UpgradeChoice struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Ability     AbilityID `json:"ability,omitempty"`
}

// UpgradeOffer accompanies the level-up callback.
type UpgradeOffer struct {
	Level   int             `json:"level"`
	Choices []UpgradeChoice `json:"choices"`
}

// Callbacks is the explicit external-interface boundary. Every field is
// optional; each is invoked at most once per tick, after the tick's state is
// final. Callbacks run on the tick goroutine and must not call back into the
// loop.
type Callbacks struct {
	StateUpdate     func(GameState)
	GameOver        func(DeathReport)
	LevelUp         func(UpgradeOffer)
	WaveComplete    func(wave int, bonus int)
	Strike          func([]StrikeEvent)
	Formation       func([]FormationEvent)
	Combat          func([]CombatEvent)
	ComboDiscovered func([]ComboID)
	Performance     func(PerfReport)
}

// tickEvents buffers everything that fired during a tick so callbacks run
// once, at the end, against the finished snapshot.
type tickEvents struct {
	strikes    []StrikeEvent
	formations []FormationEvent
	combats    []CombatEvent
	combos     []ComboID
	levelUp    *UpgradeOffer
	waveDone   bool
	wave       int
	waveBonus  int
	gameOver   *DeathReport
}

func (e *tickEvents) reset() {
	e.strikes = e.strikes[:0]
	e.formations = e.formations[:0]
	e.combats = e.combats[:0]
	e.combos = e.combos[:0]
	e.levelUp = nil
	e.waveDone = false
	e.wave = 0
	e.waveBonus = 0
	e.gameOver = nil
}

// flush invokes each registered callback at most once. StateUpdate always
// fires, last, so a host can batch the tick's events into one frame.
func (e *tickEvents) flush(cb Callbacks, st GameState, perf PerfReport, perfReady bool) {
	if len(e.strikes) > 0 && cb.Strike != nil {
		cb.Strike(append([]StrikeEvent(nil), e.strikes...))
	}
	if len(e.formations) > 0 && cb.Formation != nil {
		cb.Formation(append([]FormationEvent(nil), e.formations...))
	}
	if len(e.combats) > 0 && cb.Combat != nil {
		cb.Combat(append([]CombatEvent(nil), e.combats...))
	}
	if len(e.combos) > 0 && cb.ComboDiscovered != nil {
		cb.ComboDiscovered(append([]ComboID(nil), e.combos...))
	}
	if e.waveDone && cb.WaveComplete != nil {
		cb.WaveComplete(e.wave, e.waveBonus)
	}
	if e.levelUp != nil && cb.LevelUp != nil {
		cb.LevelUp(*e.levelUp)
	}
	if perfReady && cb.Performance != nil {
		cb.Performance(perf)
	}
	if e.gameOver != nil && cb.GameOver != nil {
		cb.GameOver(*e.gameOver)
	}
	if cb.StateUpdate != nil {
		cb.StateUpdate(st)
	}
}
