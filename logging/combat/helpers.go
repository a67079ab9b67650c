package combat

import (
	"context"

	"apex-arena/sim/logging"
)

const (
	// EventSwingOverlap is emitted when a melee swing overlaps multiple enemies.
	EventSwingOverlap logging.EventType = "combat.swing_overlap"
	// EventDamage is emitted when an attack deals damage to a target.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when an enemy is defeated.
	EventDefeat logging.EventType = "combat.defeat"
	// EventExecutionChain is emitted when a low-health kill resets the swing and repositions the player.
	EventExecutionChain logging.EventType = "combat.execution_chain"
)

// SwingOverlapPayload captures the enemies caught by a single swing.
type SwingOverlapPayload struct {
	Hits []uint64 `json:"hits"`
}

// DamagePayload captures the amount dealt to a single target.
type DamagePayload struct {
	Source       string  `json:"source"`
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
}

// DefeatPayload describes the context for a fatal blow.
type DefeatPayload struct {
	Source string `json:"source"`
	Wave   int    `json:"wave"`
}

// ExecutionChainPayload records the reposition taken after an execute kill.
type ExecutionChainPayload struct {
	VictimID uint64  `json:"victimId"`
	NextID   uint64  `json:"nextId,omitempty"`
	ToX      float64 `json:"toX,omitempty"`
	ToY      float64 `json:"toY,omitempty"`
}

// SwingOverlap publishes a multi-target swing event.
func SwingOverlap(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, targets []logging.EntityRef, payload SwingOverlapPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSwingOverlap,
		Tick:     tick,
		Actor:    actor,
		Targets:  targets,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Damage publishes a damage event for a single target.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DamagePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Defeat publishes a defeat event for the eliminated enemy.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DefeatPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ExecutionChain publishes the reposition event following an execute kill.
func ExecutionChain(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExecutionChainPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventExecutionChain,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
