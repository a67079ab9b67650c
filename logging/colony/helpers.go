package colony

import (
	"context"

	"apex-arena/sim/logging"
)

const (
	// EventDangerDeposit is emitted when a death drops a danger marker into the field.
	EventDangerDeposit logging.EventType = "colony.danger_deposit"
	// EventAlarmSpike is emitted when the field-wide alarm level crosses the spike threshold.
	EventAlarmSpike logging.EventType = "colony.alarm_spike"
)

// DangerDepositPayload captures the location and strength of a deposit.
type DangerDepositPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Amount float64 `json:"amount"`
}

// AlarmSpikePayload captures the aggregate alarm level at the spike.
type AlarmSpikePayload struct {
	Level float64 `json:"level"`
}

// DangerDeposit publishes a danger deposit event.
func DangerDeposit(ctx context.Context, pub logging.Publisher, tick uint64, payload DangerDepositPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDangerDeposit,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryColony,
		Payload:  payload,
	})
}

// AlarmSpike publishes an aggregate alarm spike event.
func AlarmSpike(ctx context.Context, pub logging.Publisher, tick uint64, payload AlarmSpikePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAlarmSpike,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryColony,
		Payload:  payload,
	})
}
