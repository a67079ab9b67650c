package formation

import (
	"context"

	"apex-arena/sim/logging"
)

const (
	// EventForming is emitted when a new formation instance begins recruiting.
	EventForming logging.EventType = "formation.forming"
	// EventActive is emitted when a formation finishes converging.
	EventActive logging.EventType = "formation.active"
	// EventLunge is emitted when a captured enemy completes a lunge dash.
	EventLunge logging.EventType = "formation.lunge"
	// EventResolved is emitted when an instance releases its members.
	EventResolved logging.EventType = "formation.resolved"
)

// FormingPayload captures the recruited members of a new instance.
type FormingPayload struct {
	InstanceID uint64   `json:"instanceId"`
	Members    []uint64 `json:"members"`
}

// ActivePayload captures the converged formation geometry.
type ActivePayload struct {
	InstanceID uint64  `json:"instanceId"`
	Radius     float64 `json:"radius"`
	Members    int     `json:"members"`
}

// LungePayload captures a completed lunge and whether it connected.
type LungePayload struct {
	InstanceID uint64  `json:"instanceId"`
	EnemyID    uint64  `json:"enemyId"`
	Hit        bool    `json:"hit"`
	Force      float64 `json:"force,omitempty"`
}

// ResolvedPayload captures why an instance resolved.
type ResolvedPayload struct {
	InstanceID uint64 `json:"instanceId"`
	Reason     string `json:"reason"`
	Released   int    `json:"released"`
}

// Forming publishes a formation recruitment event.
func Forming(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FormingPayload) {
	publish(ctx, pub, EventForming, tick, actor, payload)
}

// Active publishes a formation convergence event.
func Active(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ActivePayload) {
	publish(ctx, pub, EventActive, tick, actor, payload)
}

// Lunge publishes a lunge completion event.
func Lunge(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LungePayload) {
	publish(ctx, pub, EventLunge, tick, actor, payload)
}

// Resolved publishes an instance resolution event.
func Resolved(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ResolvedPayload) {
	publish(ctx, pub, EventResolved, tick, actor, payload)
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, actor logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
