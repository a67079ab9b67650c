package simulation

import (
	"context"

	"apex-arena/sim/logging"
)

const (
	// EventStageBudgetOverrun is emitted when a subsystem stage exceeds its advisory budget.
	EventStageBudgetOverrun logging.EventType = "simulation.stage_budget_overrun"
	// EventTickBudgetOverrun is emitted when the whole tick exceeds the frame budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
)

// StageBudgetOverrunPayload captures timing details for a stage budget breach.
type StageBudgetOverrunPayload struct {
	Stage          string  `json:"stage"`
	DurationMicros int64   `json:"durationMicros"`
	BudgetMicros   int64   `json:"budgetMicros"`
	Ratio          float64 `json:"ratio"`
}

// TickBudgetOverrunPayload captures timing details for a frame budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// StageBudgetOverrun publishes a warning for a stage exceeding its advisory budget.
func StageBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload StageBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStageBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}

// TickBudgetOverrun publishes a warning when the simulation exceeds the frame budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}
