package lifecycle

import (
	"context"

	"apex-arena/sim/logging"
)

const (
	// EventRunStarted is emitted when a new run begins.
	EventRunStarted logging.EventType = "lifecycle.run_started"
	// EventRunEnded is emitted when the player dies and the run terminates.
	EventRunEnded logging.EventType = "lifecycle.run_ended"
	// EventWaveCompleted is emitted when the last enemy of a wave is removed.
	EventWaveCompleted logging.EventType = "lifecycle.wave_completed"
	// EventLevelUp is emitted when the run pauses for an upgrade choice.
	EventLevelUp logging.EventType = "lifecycle.level_up"
)

// RunStartedPayload captures the seed of a new run.
type RunStartedPayload struct {
	Seed string `json:"seed"`
}

// RunEndedPayload captures the terminal numbers of a run.
type RunEndedPayload struct {
	Cause   string  `json:"cause"`
	Wave    int     `json:"wave"`
	Score   int     `json:"score"`
	Kills   int     `json:"kills"`
	Elapsed float64 `json:"elapsedSeconds"`
}

// WaveCompletedPayload captures a completed wave number.
type WaveCompletedPayload struct {
	Wave  int `json:"wave"`
	Bonus int `json:"bonus"`
}

// LevelUpPayload captures the level reached and the number of choices offered.
type LevelUpPayload struct {
	Level   int `json:"level"`
	Choices int `json:"choices"`
}

// RunStarted publishes a run start event.
func RunStarted(ctx context.Context, pub logging.Publisher, tick uint64, payload RunStartedPayload) {
	publish(ctx, pub, EventRunStarted, tick, payload)
}

// RunEnded publishes a run termination event.
func RunEnded(ctx context.Context, pub logging.Publisher, tick uint64, payload RunEndedPayload) {
	publish(ctx, pub, EventRunEnded, tick, payload)
}

// WaveCompleted publishes a wave completion event.
func WaveCompleted(ctx context.Context, pub logging.Publisher, tick uint64, payload WaveCompletedPayload) {
	publish(ctx, pub, EventWaveCompleted, tick, payload)
}

// LevelUp publishes a level-up pause event.
func LevelUp(ctx context.Context, pub logging.Publisher, tick uint64, payload LevelUpPayload) {
	publish(ctx, pub, EventLevelUp, tick, payload)
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
