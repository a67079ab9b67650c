package strike

import (
	"context"

	"apex-arena/sim/logging"
)

const (
	// EventLaunched is emitted when a charged strike is released.
	EventLaunched logging.EventType = "strike.launched"
	// EventHit is emitted when a strike connects with an enemy.
	EventHit logging.EventType = "strike.hit"
	// EventMissed is emitted when a strike runs its full duration without a hit.
	EventMissed logging.EventType = "strike.missed"
	// EventChained is emitted when a chain press re-initiates a lock.
	EventChained logging.EventType = "strike.chained"
	// EventBloodlustMax is emitted once when the bloodlust gauge reaches its cap.
	EventBloodlustMax logging.EventType = "strike.bloodlust_max"
)

// LaunchedPayload captures the charge parameters at release.
type LaunchedPayload struct {
	HoldMillis int64   `json:"holdMillis"`
	Distance   float64 `json:"distance"`
	Chained    bool    `json:"chained"`
}

// HitPayload captures the struck enemy and damage dealt.
type HitPayload struct {
	EnemyID   uint64  `json:"enemyId"`
	Damage    float64 `json:"damage"`
	Bloodlust float64 `json:"bloodlust"`
}

// MissedPayload captures the travelled distance of a whiffed strike.
type MissedPayload struct {
	Distance float64 `json:"distance"`
}

// ChainedPayload captures the remaining chain budget after a chain press.
type ChainedPayload struct {
	BudgetLeft int `json:"budgetLeft"`
}

// Launched publishes a strike release event.
func Launched(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LaunchedPayload) {
	publish(ctx, pub, EventLaunched, tick, actor, nil, payload)
}

// Hit publishes a strike connection event.
func Hit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload HitPayload) {
	publish(ctx, pub, EventHit, tick, actor, []logging.EntityRef{target}, payload)
}

// Missed publishes a whiffed strike event.
func Missed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MissedPayload) {
	publish(ctx, pub, EventMissed, tick, actor, nil, payload)
}

// Chained publishes a chain re-initiation event.
func Chained(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ChainedPayload) {
	publish(ctx, pub, EventChained, tick, actor, nil, payload)
}

// BloodlustMax publishes the one-time gauge cap event.
func BloodlustMax(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	publish(ctx, pub, EventBloodlustMax, tick, actor, nil, nil)
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, actor logging.EntityRef, targets []logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    actor,
		Targets:  targets,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
